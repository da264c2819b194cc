package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"portal/internal/domain"
)

const articleSelect = "SELECT article.id, article.author_id, COALESCE(NULLIF(user.display_name,''), user.username, ''), article.title, article.body, article.created_at FROM article LEFT JOIN user ON user.id = article.author_id"

func scanArticle(row interface{ Scan(...any) error }) (domain.Article, error) {
	var a domain.Article
	var created string
	if err := row.Scan(&a.ID, &a.AuthorID, &a.AuthorName, &a.Title, &a.Body, &created); err != nil {
		return domain.Article{}, notFound(err)
	}
	a.CreatedAt = parseTime(created)
	return a, nil
}

// ListArticles returns articles newest first along with the total count.
func ListArticles(ctx context.Context, db *sql.DB, limit, offset int) ([]domain.Article, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM article").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := db.QueryContext(ctx, articleSelect+" ORDER BY article.id DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
	}
	return articles, total, rows.Err()
}

func GetArticle(ctx context.Context, db *sql.DB, id int) (domain.Article, error) {
	return scanArticle(db.QueryRowContext(ctx, articleSelect+" WHERE article.id = ?", id))
}

func CreateArticle(ctx context.Context, db *sql.DB, authorID int, title, body string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(body) == "" {
		return 0, errors.New("title and body are required")
	}
	res, err := db.ExecContext(ctx, "INSERT INTO article (author_id, title, body, created_at) VALUES (?, ?, ?, ?)", authorID, title, body, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func CountArticlesByAuthor(ctx context.Context, db *sql.DB, authorID int) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM article WHERE author_id = ?", authorID).Scan(&count)
	return count, err
}
