package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clementg/consoleback/internal/model"
)

func TestOpenSession_MissingFileIsUnauthenticated(t *testing.T) {
	s, err := OpenSession(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	assert.Equal(t, model.SessionUnauthenticated, s.State())
	assert.Empty(t, s.Get().Cookies)
}

func TestSession_SetMarksValid(t *testing.T) {
	s, err := OpenSession(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	cookies := []model.Cookie{{Name: "TOKEN", Value: "abc", Domain: "unifi.ui.com"}}
	require.NoError(t, s.Set(cookies))

	session := s.Get()
	assert.Equal(t, model.SessionValid, session.State)
	require.Len(t, session.Cookies, 1)
	assert.Equal(t, "TOKEN", session.Cookies[0].Name)
	require.NotNil(t, session.CapturedAt)
}

func TestSession_ExpireOnlyFromValid(t *testing.T) {
	s, err := OpenSession(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	// Expiring an unauthenticated session records nothing.
	expired, err := s.Expire()
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, model.SessionUnauthenticated, s.State())

	require.NoError(t, s.Set([]model.Cookie{{Name: "TOKEN", Value: "abc"}}))

	expired, err = s.Expire()
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, model.SessionExpired, s.State())

	// Second expiry is a no-op so the transition is only counted once.
	expired, err = s.Expire()
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestSession_ExpiredKeepsCookies(t *testing.T) {
	s, err := OpenSession(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	require.NoError(t, s.Set([]model.Cookie{{Name: "TOKEN", Value: "abc"}}))
	_, err = s.Expire()
	require.NoError(t, err)

	assert.Len(t, s.Get().Cookies, 1)
}

func TestSession_ClearResets(t *testing.T) {
	s, err := OpenSession(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	require.NoError(t, s.Set([]model.Cookie{{Name: "TOKEN", Value: "abc"}}))
	require.NoError(t, s.Clear())

	session := s.Get()
	assert.Equal(t, model.SessionUnauthenticated, session.State)
	assert.Empty(t, session.Cookies)
	assert.Nil(t, session.CapturedAt)
}

func TestSession_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := OpenSession(path)
	require.NoError(t, err)
	require.NoError(t, s.Set([]model.Cookie{{Name: "TOKEN", Value: "abc"}}))
	_, err = s.Expire()
	require.NoError(t, err)

	reopened, err := OpenSession(path)
	require.NoError(t, err)
	assert.Equal(t, model.SessionExpired, reopened.State())
	assert.Len(t, reopened.Get().Cookies, 1)
}

func TestSession_GetReturnsCookieCopy(t *testing.T) {
	s, err := OpenSession(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	require.NoError(t, s.Set([]model.Cookie{{Name: "TOKEN", Value: "abc"}}))

	out := s.Get()
	out.Cookies[0].Value = "tampered"

	assert.Equal(t, "abc", s.Get().Cookies[0].Value)
}
