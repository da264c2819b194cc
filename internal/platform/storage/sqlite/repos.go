package sqlitestore

import (
	"context"
	"database/sql"

	"portal/internal/contracts"
	"portal/internal/domain"
)

type repos struct {
	db *sql.DB
}

// NewRepos wires sqlite-backed repositories for the app layer.
func NewRepos(db *sql.DB) contracts.Repos {
	r := repos{db: db}
	return contracts.Repos{
		Users:    r,
		Articles: r,
		Notes:    r,
		Messages: r,
		Albums:   r,
		Audit:    r,
		Settings: r,
	}
}

// Users
func (r repos) GetUserByID(ctx context.Context, id int) (domain.User, error) {
	return GetUserByID(ctx, r.db, id)
}

func (r repos) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return GetUserByUsername(ctx, r.db, username)
}

func (r repos) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	return CreateUser(ctx, r.db, username, passwordHash)
}

func (r repos) UpdateProfile(ctx context.Context, userID int, displayName, bio string) error {
	return UpdateProfile(ctx, r.db, userID, displayName, bio)
}

func (r repos) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	return UpdatePassword(ctx, r.db, userID, passwordHash)
}

func (r repos) UpdateTOTPSecret(ctx context.Context, userID int, secret string) error {
	return UpdateTOTPSecret(ctx, r.db, userID, secret)
}

func (r repos) ClaimTOTPStep(ctx context.Context, userID int, step int64) (bool, error) {
	return ClaimTOTPStep(ctx, r.db, userID, step)
}

// Articles
func (r repos) ListArticles(ctx context.Context, limit, offset int) ([]domain.Article, int, error) {
	return ListArticles(ctx, r.db, limit, offset)
}

func (r repos) GetArticle(ctx context.Context, id int) (domain.Article, error) {
	return GetArticle(ctx, r.db, id)
}

func (r repos) CreateArticle(ctx context.Context, authorID int, title, body string) (int64, error) {
	return CreateArticle(ctx, r.db, authorID, title, body)
}

func (r repos) CountArticlesByAuthor(ctx context.Context, authorID int) (int, error) {
	return CountArticlesByAuthor(ctx, r.db, authorID)
}

// Notes
func (r repos) ListNotes(ctx context.Context, userID int) ([]domain.Note, error) {
	return ListNotes(ctx, r.db, userID)
}

func (r repos) CreateNote(ctx context.Context, userID int, body string) (int64, error) {
	return CreateNote(ctx, r.db, userID, body)
}

func (r repos) DeleteNote(ctx context.Context, userID, noteID int) error {
	return DeleteNote(ctx, r.db, userID, noteID)
}

func (r repos) CountNotes(ctx context.Context, userID int) (int, error) {
	return CountNotes(ctx, r.db, userID)
}

// Messages
func (r repos) ListInbox(ctx context.Context, userID int) ([]domain.Message, error) {
	return ListInbox(ctx, r.db, userID)
}

func (r repos) ListSent(ctx context.Context, userID int) ([]domain.Message, error) {
	return ListSent(ctx, r.db, userID)
}

func (r repos) SendMessage(ctx context.Context, senderID, recipientID int, body string) (int64, error) {
	return SendMessage(ctx, r.db, senderID, recipientID, body)
}

func (r repos) MarkInboxRead(ctx context.Context, userID, upToID int) error {
	return MarkInboxRead(ctx, r.db, userID, upToID)
}

func (r repos) CountUnread(ctx context.Context, userID int) (int, error) {
	return CountUnread(ctx, r.db, userID)
}

// Albums
func (r repos) ListAlbums(ctx context.Context, userID int) ([]domain.Album, error) {
	return ListAlbums(ctx, r.db, userID)
}

func (r repos) GetAlbum(ctx context.Context, userID, albumID int) (domain.Album, error) {
	return GetAlbum(ctx, r.db, userID, albumID)
}

func (r repos) CreateAlbum(ctx context.Context, userID int, title string) (int64, error) {
	return CreateAlbum(ctx, r.db, userID, title)
}

func (r repos) ListPhotos(ctx context.Context, albumID int) ([]domain.Photo, error) {
	return ListPhotos(ctx, r.db, albumID)
}

func (r repos) GetPhoto(ctx context.Context, albumID, photoID int) (domain.Photo, error) {
	return GetPhoto(ctx, r.db, albumID, photoID)
}

func (r repos) AddPhoto(ctx context.Context, photo domain.Photo) (int64, error) {
	return AddPhoto(ctx, r.db, photo)
}

func (r repos) CountAlbums(ctx context.Context, userID int) (int, error) {
	return CountAlbums(ctx, r.db, userID)
}

// Audit
func (r repos) WriteAuditLog(ctx context.Context, actorID int, action, target string, metadata map[string]string) error {
	return WriteAuditLog(ctx, r.db, actorID, action, target, metadata)
}

func (r repos) ListAuditLogsForUser(ctx context.Context, userID, limit int) ([]domain.AuditLog, error) {
	return ListAuditLogsForUser(ctx, r.db, userID, limit)
}

// Settings
func (r repos) GetSetting(ctx context.Context, key string) (string, bool, error) {
	return GetSetting(ctx, r.db, key)
}

func (r repos) SetSetting(ctx context.Context, key, value string) error {
	return SetSetting(ctx, r.db, key, value)
}

func (r repos) DeleteSetting(ctx context.Context, key string) error {
	return DeleteSetting(ctx, r.db, key)
}
