package users

import (
	"context"

	"portal/internal/domain"
)

// Repository defines persistence operations for users.
type Repository interface {
	GetUserByID(ctx context.Context, id int) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	UpdateProfile(ctx context.Context, userID int, displayName, bio string) error
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	UpdateTOTPSecret(ctx context.Context, userID int, secret string) error
	ClaimTOTPStep(ctx context.Context, userID int, step int64) (bool, error)
}
