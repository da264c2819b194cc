package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"portal/internal/domain"
)

const albumSelect = "SELECT album.id, album.user_id, album.title, album.created_at, (SELECT COUNT(*) FROM photo WHERE photo.album_id = album.id) FROM album"

func scanAlbum(row interface{ Scan(...any) error }) (domain.Album, error) {
	var a domain.Album
	var created string
	if err := row.Scan(&a.ID, &a.UserID, &a.Title, &created, &a.PhotoCount); err != nil {
		return domain.Album{}, notFound(err)
	}
	a.CreatedAt = parseTime(created)
	return a, nil
}

func ListAlbums(ctx context.Context, db *sql.DB, userID int) ([]domain.Album, error) {
	rows, err := db.QueryContext(ctx, albumSelect+" WHERE album.user_id = ? ORDER BY album.id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []domain.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

// GetAlbum returns an album owned by userID.
func GetAlbum(ctx context.Context, db *sql.DB, userID, albumID int) (domain.Album, error) {
	return scanAlbum(db.QueryRowContext(ctx, albumSelect+" WHERE album.id = ? AND album.user_id = ?", albumID, userID))
}

func CreateAlbum(ctx context.Context, db *sql.DB, userID int, title string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, errors.New("album title is required")
	}
	res, err := db.ExecContext(ctx, "INSERT INTO album (user_id, title, created_at) VALUES (?, ?, ?)", userID, title, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func CountAlbums(ctx context.Context, db *sql.DB, userID int) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM album WHERE user_id = ?", userID).Scan(&count)
	return count, err
}

const photoSelect = "SELECT id, album_id, filename, COALESCE(caption,''), width, height, created_at FROM photo"

func scanPhoto(row interface{ Scan(...any) error }) (domain.Photo, error) {
	var p domain.Photo
	var created string
	if err := row.Scan(&p.ID, &p.AlbumID, &p.Filename, &p.Caption, &p.Width, &p.Height, &created); err != nil {
		return domain.Photo{}, notFound(err)
	}
	p.CreatedAt = parseTime(created)
	return p, nil
}

func ListPhotos(ctx context.Context, db *sql.DB, albumID int) ([]domain.Photo, error) {
	rows, err := db.QueryContext(ctx, photoSelect+" WHERE album_id = ? ORDER BY id", albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func GetPhoto(ctx context.Context, db *sql.DB, albumID, photoID int) (domain.Photo, error) {
	return scanPhoto(db.QueryRowContext(ctx, photoSelect+" WHERE id = ? AND album_id = ?", photoID, albumID))
}

func AddPhoto(ctx context.Context, db *sql.DB, p domain.Photo) (int64, error) {
	if p.AlbumID == 0 || strings.TrimSpace(p.Filename) == "" {
		return 0, errors.New("album and filename are required")
	}
	res, err := db.ExecContext(
		ctx,
		"INSERT INTO photo (album_id, filename, caption, width, height, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.AlbumID, p.Filename, strings.TrimSpace(p.Caption), p.Width, p.Height, now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
