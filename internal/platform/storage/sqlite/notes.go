package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"portal/internal/domain"
)

func ListNotes(ctx context.Context, db *sql.DB, userID int) ([]domain.Note, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, user_id, body, created_at FROM note WHERE user_id = ? ORDER BY id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		var created string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Body, &created); err != nil {
			return nil, err
		}
		n.CreatedAt = parseTime(created)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func CreateNote(ctx context.Context, db *sql.DB, userID int, body string) (int64, error) {
	if strings.TrimSpace(body) == "" {
		return 0, errors.New("note body is required")
	}
	res, err := db.ExecContext(ctx, "INSERT INTO note (user_id, body, created_at) VALUES (?, ?, ?)", userID, body, now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteNote removes a note owned by userID; other users' notes are reported as not found.
func DeleteNote(ctx context.Context, db *sql.DB, userID, noteID int) error {
	return execOne(ctx, db, "DELETE FROM note WHERE id = ? AND user_id = ?", noteID, userID)
}

func CountNotes(ctx context.Context, db *sql.DB, userID int) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM note WHERE user_id = ?", userID).Scan(&count)
	return count, err
}
