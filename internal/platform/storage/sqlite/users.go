package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
	"portal/internal/domain"
)

const userColumns = "id, username, COALESCE(display_name,''), COALESCE(bio,''), password_hash, COALESCE(totp_secret,''), COALESCE(totp_last_step,0), created_at, COALESCE(updated_at,'')"

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	var createdAt, updatedAt string
	if err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Bio, &u.PasswordHash, &u.TOTPSecret, &u.TOTPLastStep, &createdAt, &updatedAt); err != nil {
		return domain.User{}, notFound(err)
	}
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return u, nil
}

func GetUserByID(ctx context.Context, db *sql.DB, id int) (domain.User, error) {
	return scanUser(db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user WHERE id = ?", id))
}

// GetUserByUsername looks a user up case-insensitively.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.ErrNotFound
	}
	return scanUser(db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM user WHERE username = ? COLLATE NOCASE", username))
}

func CreateUser(ctx context.Context, db *sql.DB, username, passwordHash string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(passwordHash) == "" {
		return 0, errors.New("username and password hash are required")
	}
	if _, err := GetUserByUsername(ctx, db, username); err == nil {
		return 0, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	ts := now()
	res, err := db.ExecContext(
		ctx,
		`INSERT INTO user (username, display_name, bio, password_hash, totp_secret, created_at, updated_at) VALUES (?, '', '', ?, '', ?, ?)`,
		username, passwordHash, ts, ts,
	)
	if isUniqueViolation(err) {
		return 0, domain.ErrUsernameTaken
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func UpdateProfile(ctx context.Context, db *sql.DB, userID int, displayName, bio string) error {
	return execOne(ctx, db, "UPDATE user SET display_name = ?, bio = ?, updated_at = ? WHERE id = ?", strings.TrimSpace(displayName), strings.TrimSpace(bio), now(), userID)
}

func UpdatePassword(ctx context.Context, db *sql.DB, userID int, passwordHash string) error {
	if strings.TrimSpace(passwordHash) == "" {
		return errors.New("password hash is required")
	}
	return execOne(ctx, db, "UPDATE user SET password_hash = ?, updated_at = ? WHERE id = ?", passwordHash, now(), userID)
}

// UpdateTOTPSecret sets the second factor secret; an empty secret disables it.
func UpdateTOTPSecret(ctx context.Context, db *sql.DB, userID int, secret string) error {
	return execOne(ctx, db, "UPDATE user SET totp_secret = ?, totp_last_step = 0, updated_at = ? WHERE id = ?", secret, now(), userID)
}

// ClaimTOTPStep records step as the last accepted one-time code window. It
// reports false when an equal or later step was already claimed.
func ClaimTOTPStep(ctx context.Context, db *sql.DB, userID int, step int64) (bool, error) {
	res, err := db.ExecContext(ctx, "UPDATE user SET totp_last_step = ? WHERE id = ? AND COALESCE(totp_last_step, 0) < ?", step, userID, step)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// isUniqueViolation catches a concurrent insert that slipped past the lookup.
func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3lib.SQLITE_CONSTRAINT:
		return strings.Contains(sqliteErr.Error(), "UNIQUE")
	}
	return false
}

// execOne runs an update that must touch exactly one row.
func execOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
