package articles

import (
	"context"

	"portal/internal/domain"
)

// Repository defines persistence operations for articles.
type Repository interface {
	ListArticles(ctx context.Context, limit, offset int) ([]domain.Article, int, error)
	GetArticle(ctx context.Context, id int) (domain.Article, error)
	CreateArticle(ctx context.Context, authorID int, title, body string) (int64, error)
	CountArticlesByAuthor(ctx context.Context, authorID int) (int, error)
}
