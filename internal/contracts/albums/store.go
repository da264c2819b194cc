package albums

import (
	"context"

	"portal/internal/domain"
)

// Repository defines persistence operations for photo albums.
type Repository interface {
	ListAlbums(ctx context.Context, userID int) ([]domain.Album, error)
	GetAlbum(ctx context.Context, userID, albumID int) (domain.Album, error)
	CreateAlbum(ctx context.Context, userID int, title string) (int64, error)
	ListPhotos(ctx context.Context, albumID int) ([]domain.Photo, error)
	GetPhoto(ctx context.Context, albumID, photoID int) (domain.Photo, error)
	AddPhoto(ctx context.Context, photo domain.Photo) (int64, error)
	CountAlbums(ctx context.Context, userID int) (int, error)
}
