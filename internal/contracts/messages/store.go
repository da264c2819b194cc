package messages

import (
	"context"

	"portal/internal/domain"
)

// Repository defines persistence operations for direct messages.
type Repository interface {
	ListInbox(ctx context.Context, userID int) ([]domain.Message, error)
	ListSent(ctx context.Context, userID int) ([]domain.Message, error)
	SendMessage(ctx context.Context, senderID, recipientID int, body string) (int64, error)
	MarkInboxRead(ctx context.Context, userID, upToID int) error
	CountUnread(ctx context.Context, userID int) (int, error)
}
