package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndListBetween(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	messages := NewMessageService(db, users)

	alice, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)
	bob, err := users.Register("bob", "pw2", "Bobby")
	require.NoError(t, err)

	sent, err := messages.Send(bob.ID, alice.ID, "hi")
	require.NoError(t, err)
	assert.NotZero(t, sent.ID)
	assert.False(t, sent.IsRead)

	conversation, err := messages.ListBetween(alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, conversation, 1, "the sent message appears exactly once")
	assert.Equal(t, sent.ID, conversation[0].ID)
	assert.Equal(t, "hi", conversation[0].Content)
	assert.False(t, conversation[0].IsRead)
	assert.Equal(t, "Bobby", conversation[0].SenderDisplayName)
	assert.Equal(t, "user", conversation[0].SenderRole)
}

func TestListBetweenOrdersBothDirections(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	messages := NewMessageService(db, users)

	alice, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)
	bob, err := users.Register("bob", "pw2", "")
	require.NoError(t, err)

	for i, pair := range [][2]string{{alice.ID, bob.ID}, {bob.ID, alice.ID}, {alice.ID, bob.ID}} {
		_, err := messages.Send(pair[0], pair[1], "msg")
		require.NoError(t, err, "send %d", i)
	}

	conversation, err := messages.ListBetween(alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, conversation, 3)
	for i := 1; i < len(conversation); i++ {
		assert.Less(t, conversation[i-1].ID, conversation[i].ID, "ascending with id tie-break")
		assert.False(t, conversation[i].Timestamp.Before(conversation[i-1].Timestamp))
	}
}

func TestSendValidation(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	messages := NewMessageService(db, users)

	alice, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)

	_, err = messages.Send("", alice.ID, "hi")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = messages.Send(alice.ID, "", "hi")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = messages.Send(alice.ID, "somebody", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = messages.Send(alice.ID, "missing", "hi")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = messages.Send("missing", alice.ID, "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkReadIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	messages := NewMessageService(db, users)

	alice, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)
	bob, err := users.Register("bob", "pw2", "")
	require.NoError(t, err)

	_, err = messages.Send(bob.ID, alice.ID, "hi")
	require.NoError(t, err)

	updated, err := messages.MarkRead(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	updated, err = messages.MarkRead(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated, "second call transitions nothing")

	conversation, err := messages.ListBetween(alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, conversation, 1)
	assert.True(t, conversation[0].IsRead, "read is terminal")
}

func TestMarkReadScopedToPair(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	messages := NewMessageService(db, users)

	alice, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)
	bob, err := users.Register("bob", "pw2", "")
	require.NoError(t, err)
	carol, err := users.Register("carol", "pw3", "")
	require.NoError(t, err)

	_, err = messages.Send(bob.ID, alice.ID, "from bob")
	require.NoError(t, err)
	_, err = messages.Send(carol.ID, alice.ID, "from carol")
	require.NoError(t, err)

	updated, err := messages.MarkRead(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated, "only the (recipient, sender) pair transitions")

	fromCarol, err := messages.ListBetween(alice.ID, carol.ID)
	require.NoError(t, err)
	require.Len(t, fromCarol, 1)
	assert.False(t, fromCarol[0].IsRead)
}

func TestSendRejectedWhileBanned(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	messages := NewMessageService(db, users)

	admin, err := users.Register("admin", "pw0", "")
	require.NoError(t, err)
	promoteToAdmin(t, db, admin.ID)

	alice, err := users.Register("alice", "pw1", "")
	require.NoError(t, err)
	bob, err := users.Register("bob", "pw2", "")
	require.NoError(t, err)

	require.NoError(t, users.SetBan(admin.ID, "bob", nil))

	_, err = messages.Send(bob.ID, alice.ID, "hi")
	assert.ErrorIs(t, err, ErrForbidden, "banned sender")

	_, err = messages.Send(alice.ID, bob.ID, "hi")
	assert.ErrorIs(t, err, ErrForbidden, "banned recipient")

	require.NoError(t, users.Unban(admin.ID, "bob"))
	_, err = messages.Send(bob.ID, alice.ID, "hi again")
	require.NoError(t, err)
}
