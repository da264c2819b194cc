package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"portal/internal/domain"
)

const messageSelect = `SELECT message.id, message.sender_id, COALESCE(sender.username,''), message.recipient_id, COALESCE(recipient.username,''), message.body, message.created_at, COALESCE(message.read_at,'')
FROM message
LEFT JOIN user AS sender ON sender.id = message.sender_id
LEFT JOIN user AS recipient ON recipient.id = message.recipient_id`

func listMessages(ctx context.Context, db *sql.DB, where string, userID int) ([]domain.Message, error) {
	rows, err := db.QueryContext(ctx, messageSelect+" WHERE "+where+" ORDER BY message.id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var created, read string
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderName, &m.RecipientID, &m.RecipientName, &m.Body, &created, &read); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(created)
		if read != "" {
			m.ReadAt = sql.NullTime{Time: parseTime(read), Valid: true}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func ListInbox(ctx context.Context, db *sql.DB, userID int) ([]domain.Message, error) {
	return listMessages(ctx, db, "message.recipient_id = ?", userID)
}

func ListSent(ctx context.Context, db *sql.DB, userID int) ([]domain.Message, error) {
	return listMessages(ctx, db, "message.sender_id = ?", userID)
}

func SendMessage(ctx context.Context, db *sql.DB, senderID, recipientID int, body string) (int64, error) {
	if strings.TrimSpace(body) == "" {
		return 0, errors.New("message body is required")
	}
	if _, err := GetUserByID(ctx, db, recipientID); err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, "INSERT INTO message (sender_id, recipient_id, body, created_at) VALUES (?, ?, ?, ?)", senderID, recipientID, body, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// MarkInboxRead marks the user's messages up to and including upToID as read.
// Messages delivered after the inbox was listed stay unread.
func MarkInboxRead(ctx context.Context, db *sql.DB, userID, upToID int) error {
	_, err := db.ExecContext(ctx, "UPDATE message SET read_at = ? WHERE recipient_id = ? AND id <= ? AND read_at IS NULL", now(), userID, upToID)
	return err
}

func CountUnread(ctx context.Context, db *sql.DB, userID int) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM message WHERE recipient_id = ? AND read_at IS NULL", userID).Scan(&count)
	return count, err
}
