package wiring

import (
	"context"

	"portal/internal/domain"
)

// Articles.
func (d Deps) ListArticles(ctx context.Context, limit, offset int) ([]domain.Article, int, error) {
	return d.repos.Articles.ListArticles(ctx, limit, offset)
}

func (d Deps) GetArticle(ctx context.Context, id int) (domain.Article, error) {
	return d.repos.Articles.GetArticle(ctx, id)
}

func (d Deps) CreateArticle(ctx context.Context, authorID int, title, body string) (int64, error) {
	return d.repos.Articles.CreateArticle(ctx, authorID, title, body)
}

func (d Deps) CountArticlesByAuthor(ctx context.Context, authorID int) (int, error) {
	return d.repos.Articles.CountArticlesByAuthor(ctx, authorID)
}

// Notes.
func (d Deps) ListNotes(ctx context.Context, userID int) ([]domain.Note, error) {
	return d.repos.Notes.ListNotes(ctx, userID)
}

func (d Deps) CreateNote(ctx context.Context, userID int, body string) (int64, error) {
	return d.repos.Notes.CreateNote(ctx, userID, body)
}

func (d Deps) DeleteNote(ctx context.Context, userID, noteID int) error {
	return d.repos.Notes.DeleteNote(ctx, userID, noteID)
}

func (d Deps) CountNotes(ctx context.Context, userID int) (int, error) {
	return d.repos.Notes.CountNotes(ctx, userID)
}

// Messages.
func (d Deps) ListInbox(ctx context.Context, userID int) ([]domain.Message, error) {
	return d.repos.Messages.ListInbox(ctx, userID)
}

func (d Deps) ListSent(ctx context.Context, userID int) ([]domain.Message, error) {
	return d.repos.Messages.ListSent(ctx, userID)
}

func (d Deps) SendMessage(ctx context.Context, senderID, recipientID int, body string) (int64, error) {
	return d.repos.Messages.SendMessage(ctx, senderID, recipientID, body)
}

func (d Deps) MarkInboxRead(ctx context.Context, userID, upToID int) error {
	return d.repos.Messages.MarkInboxRead(ctx, userID, upToID)
}

func (d Deps) CountUnread(ctx context.Context, userID int) (int, error) {
	return d.repos.Messages.CountUnread(ctx, userID)
}

// Albums.
func (d Deps) ListAlbums(ctx context.Context, userID int) ([]domain.Album, error) {
	return d.repos.Albums.ListAlbums(ctx, userID)
}

func (d Deps) GetAlbum(ctx context.Context, userID, albumID int) (domain.Album, error) {
	return d.repos.Albums.GetAlbum(ctx, userID, albumID)
}

func (d Deps) CreateAlbum(ctx context.Context, userID int, title string) (int64, error) {
	return d.repos.Albums.CreateAlbum(ctx, userID, title)
}

func (d Deps) ListPhotos(ctx context.Context, albumID int) ([]domain.Photo, error) {
	return d.repos.Albums.ListPhotos(ctx, albumID)
}

func (d Deps) GetPhoto(ctx context.Context, albumID, photoID int) (domain.Photo, error) {
	return d.repos.Albums.GetPhoto(ctx, albumID, photoID)
}

func (d Deps) AddPhoto(ctx context.Context, photo domain.Photo) (int64, error) {
	return d.repos.Albums.AddPhoto(ctx, photo)
}

func (d Deps) CountAlbums(ctx context.Context, userID int) (int, error) {
	return d.repos.Albums.CountAlbums(ctx, userID)
}
