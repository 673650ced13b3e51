package state

import (
	"testing"

	"jobdeck/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SetClearToken(t *testing.T) {
	f := newFixture(t)
	s := f.manager.Session
	assert.Empty(t, s.Token())
	_, ok := s.User()
	assert.False(t, ok)

	user := models.User{ID: "u1", Email: "a@b.co", Username: "alice", Role: models.RoleUser, IsActive: true}
	require.NoError(t, s.SetSession("tok-1", user))
	assert.Equal(t, "tok-1", s.Token())
	assert.Equal(t, "tok-1", f.manager.Token())
	assert.Equal(t, "tok-1", f.raw(t, KeyToken))

	got, ok := s.User()
	assert.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, f.manager.ClearToken())
	assert.Empty(t, s.Token())
	_, ok = s.User()
	assert.True(t, ok)

	require.NoError(t, s.Clear())
	_, ok = s.User()
	assert.False(t, ok)
}

func TestSession_FailedWriteKeepsState(t *testing.T) {
	f := newFixture(t)
	s := f.manager.Session
	require.NoError(t, s.SetSession("tok", models.User{ID: "u1"}))

	f.kv.setFailWrites(true)
	assert.Error(t, s.SetSession("tok-2", models.User{ID: "u2"}))
	assert.Error(t, s.ClearToken())
	assert.Equal(t, "tok", s.Token())
}
