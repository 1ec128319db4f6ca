package services

import (
	"testing"
	"time"

	"github.com/miguelsv/chatline-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	user, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice", user.DisplayName, "display name defaults to username")
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = users.Register("bob", "pw2", "Bobby")
	require.NoError(t, err)

	list, err := users.ListUsers()
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, u := range list {
		assert.Empty(t, u.PasswordHash, "listing must not carry password material")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	_, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)

	_, err = users.Register("alice", "other", "")
	assert.ErrorIs(t, err, ErrConflict)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users WHERE username = 'alice'").Scan(&count))
	assert.Equal(t, 1, count, "exactly one stored record")
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	_, err := users.Register("", "pw", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = users.Register("alice", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	registered, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)

	user, err := users.Authenticate("alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	_, err = users.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = users.Authenticate("nobody", "pw1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	user, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)

	_, err = users.UpdateProfile(user.ID, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput, "at least one field is required")

	name := "Alice in Chains"
	_, err = users.UpdateProfile("missing", &name, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := users.UpdateProfile(user.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName)

	pic := "/uploads/123-me.png"
	updated, err = users.UpdateProfile(user.ID, nil, &pic)
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName, "display name untouched by partial update")
	assert.Equal(t, pic, updated.ProfilePicture)
}

func TestSetBanRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	alice, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)
	_, err = users.Register("bob", "pw2", "")
	require.NoError(t, err)

	err = users.SetBan(alice.ID, "bob", nil)
	assert.ErrorIs(t, err, ErrForbidden, "plain users cannot ban")
	err = users.SetBan("missing", "bob", nil)
	assert.ErrorIs(t, err, ErrForbidden)

	promoteToAdmin(t, db, alice.ID)

	err = users.SetBan(alice.ID, "nobody", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, users.SetBan(alice.ID, "bob", nil))
}

func TestPermanentBanAndUnban(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	alice, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)
	bob, err := users.Register("bob", "pw2", "")
	require.NoError(t, err)
	promoteToAdmin(t, db, alice.ID)

	// Absent duration means permanent.
	require.NoError(t, users.SetBan(alice.ID, "bob", nil))

	banned, err := users.IsBanned(bob.ID)
	require.NoError(t, err)
	assert.True(t, banned, "permanent ban never expires")

	require.NoError(t, users.Unban(alice.ID, "bob"))
	banned, err = users.IsBanned(bob.ID)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestExpiredBanLazilyCleared(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	alice, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)
	bob, err := users.Register("bob", "pw2", "")
	require.NoError(t, err)
	promoteToAdmin(t, db, alice.ID)

	minutes := 30
	require.NoError(t, users.SetBan(alice.ID, "bob", &minutes))

	banned, err := users.IsBanned(bob.ID)
	require.NoError(t, err)
	assert.True(t, banned, "timed ban is active before expiry")

	// Move the expiration into the past; the next check must clear it.
	_, err = db.Exec("UPDATE users SET ban_expiration = ? WHERE id = ?", time.Now().UTC().Add(-time.Minute), bob.ID)
	require.NoError(t, err)

	banned, err = users.IsBanned(bob.ID)
	require.NoError(t, err)
	assert.False(t, banned)

	user, err := users.GetUserByID(bob.ID)
	require.NoError(t, err)
	assert.False(t, user.IsBanned, "ban flag cleared in the store")
	assert.Nil(t, user.BanExpiration)
}

func TestIsBannedUnknownUser(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	_, err := users.IsBanned("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
