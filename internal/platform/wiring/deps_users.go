package wiring

import (
	"context"

	"portal/internal/domain"
)

// Users.
func (d Deps) GetUserByID(ctx context.Context, id int) (domain.User, error) {
	return d.repos.Users.GetUserByID(ctx, id)
}

func (d Deps) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return d.repos.Users.GetUserByUsername(ctx, username)
}

func (d Deps) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	return d.repos.Users.CreateUser(ctx, username, passwordHash)
}

func (d Deps) UpdateProfile(ctx context.Context, userID int, displayName, bio string) error {
	return d.repos.Users.UpdateProfile(ctx, userID, displayName, bio)
}

func (d Deps) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	return d.repos.Users.UpdatePassword(ctx, userID, passwordHash)
}

func (d Deps) UpdateTOTPSecret(ctx context.Context, userID int, secret string) error {
	return d.repos.Users.UpdateTOTPSecret(ctx, userID, secret)
}

func (d Deps) ClaimTOTPStep(ctx context.Context, userID int, step int64) (bool, error) {
	return d.repos.Users.ClaimTOTPStep(ctx, userID, step)
}
