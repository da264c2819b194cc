package domain

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a record does not exist or is
// not visible to the caller.
var ErrNotFound = errors.New("not found")

// ErrNotLoggedIn is returned when a request carries no authenticated user.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrUsernameTaken is returned when creating a user whose name already exists.
var ErrUsernameTaken = errors.New("username already taken")

// User is an account that can log in to the portal.
type User struct {
	ID           int
	Username     string
	DisplayName  string
	Bio          string
	PasswordHash string
	TOTPSecret   string
	TOTPLastStep int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TwoFactorEnabled reports whether login requires a one-time code.
func (u User) TwoFactorEnabled() bool {
	return u.TOTPSecret != ""
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

type Article struct {
	ID         int
	AuthorID   int
	AuthorName string
	Title      string
	Body       string
	CreatedAt  time.Time
}

type Note struct {
	ID        int
	UserID    int
	Body      string
	CreatedAt time.Time
}

type Message struct {
	ID            int
	SenderID      int
	SenderName    string
	RecipientID   int
	RecipientName string
	Body          string
	CreatedAt     time.Time
	ReadAt        sql.NullTime
}

type Album struct {
	ID         int
	UserID     int
	Title      string
	PhotoCount int
	CreatedAt  time.Time
}

type Photo struct {
	ID        int
	AlbumID   int
	Filename  string
	Caption   string
	Width     int
	Height    int
	CreatedAt time.Time
}

// Counts summarizes a user's content for the home view.
type Counts struct {
	Articles       int
	Notes          int
	UnreadMessages int
	Albums         int
}

type AuditLog struct {
	ID        int
	ActorID   sql.NullInt64
	ActorName string
	Action    string
	Target    string
	Metadata  string
	CreatedAt time.Time
}
