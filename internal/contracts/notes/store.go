package notes

import (
	"context"

	"portal/internal/domain"
)

// Repository defines persistence operations for notes. Notes are private to
// their owner.
type Repository interface {
	ListNotes(ctx context.Context, userID int) ([]domain.Note, error)
	CreateNote(ctx context.Context, userID int, body string) (int64, error)
	DeleteNote(ctx context.Context, userID, noteID int) error
	CountNotes(ctx context.Context, userID int) (int, error)
}
