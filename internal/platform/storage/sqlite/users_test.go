package sqlitestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"portal/internal/domain"
)

func TestCreateAndLoadUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := CreateUser(ctx, db, " alice ", "hash")
	require.NoError(t, err)

	u, err := GetUserByUsername(ctx, db, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, int(id), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice", u.Name())
	assert.False(t, u.TwoFactorEnabled())
	assert.False(t, u.CreatedAt.IsZero())

	_, err = CreateUser(ctx, db, "Alice", "hash")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

// TestDuplicateInsertMapsToUsernameTaken covers two registrations racing past
// the lookup: the UNIQUE index has the final word.
func TestDuplicateInsertMapsToUsernameTaken(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := CreateUser(ctx, db, "alice", "hash")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO user (username, password_hash, created_at) VALUES ('ALICE', 'hash', '2024-01-01T00:00:00Z')`)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err), err.Error())
	assert.False(t, isUniqueViolation(domain.ErrNotFound))
	assert.False(t, isUniqueViolation(nil))
}

func TestClaimTOTPStepRejectsReplays(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id, err := CreateUser(ctx, db, "carol", "hash")
	require.NoError(t, err)
	require.NoError(t, UpdateTOTPSecret(ctx, db, int(id), "JBSWY3DPEHPK3PXP"))

	ok, err := ClaimTOTPStep(ctx, db, int(id), 1000)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ClaimTOTPStep(ctx, db, int(id), 1000)
	require.NoError(t, err)
	assert.False(t, ok, "same window twice")
	ok, err = ClaimTOTPStep(ctx, db, int(id), 999)
	require.NoError(t, err)
	assert.False(t, ok, "earlier window")

	u, err := GetUserByID(ctx, db, int(id))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), u.TOTPLastStep)

	require.NoError(t, UpdateTOTPSecret(ctx, db, int(id), "KRSXG5CTMVRXEZLU"))
	u, err = GetUserByID(ctx, db, int(id))
	require.NoError(t, err)
	assert.Zero(t, u.TOTPLastStep, "a new secret starts a fresh sequence")
}

func TestGetUserMissing(t *testing.T) {
	db := openTestDB(t)
	_, err := GetUserByID(context.Background(), db, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = GetUserByUsername(context.Background(), db, "  ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateUserFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	id, err := CreateUser(ctx, db, "bob", "hash")
	require.NoError(t, err)

	require.NoError(t, UpdateProfile(ctx, db, int(id), " Bob B ", "hello"))
	require.NoError(t, UpdatePassword(ctx, db, int(id), "hash2"))
	require.NoError(t, UpdateTOTPSecret(ctx, db, int(id), "JBSWY3DPEHPK3PXP"))

	u, err := GetUserByID(ctx, db, int(id))
	require.NoError(t, err)
	assert.Equal(t, "Bob B", u.Name())
	assert.Equal(t, "hello", u.Bio)
	assert.Equal(t, "hash2", u.PasswordHash)
	assert.True(t, u.TwoFactorEnabled())

	assert.Error(t, UpdatePassword(ctx, db, int(id), ""))
	assert.ErrorIs(t, UpdateProfile(ctx, db, 404, "x", "y"), domain.ErrNotFound)
}
