package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureClientIDStable(t *testing.T) {
	s, err := NewSessionStore("")
	require.NoError(t, err)

	first, err := s.EnsureClientID()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := s.EnsureClientID()
	require.NoError(t, err)
	assert.Equal(t, first, second, "identity must not change between calls")
}

func TestEnsureClientIDSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSessionStore(dir)
	require.NoError(t, err)
	first, err := s.EnsureClientID()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := NewSessionStore(dir)
	require.NoError(t, err)
	defer s2.Close()
	second, err := s2.EnsureClientID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAccountRoundTrip(t *testing.T) {
	s, err := NewSessionStore("")
	require.NoError(t, err)

	_, ok := s.Account()
	assert.False(t, ok)

	require.NoError(t, s.SaveAccount("casey"))
	name, ok := s.Account()
	assert.True(t, ok)
	assert.Equal(t, "casey", name)
}

func TestResetWipesEverything(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSessionStore(dir)
	require.NoError(t, err)
	defer s.Close()

	first, err := s.EnsureClientID()
	require.NoError(t, err)
	require.NoError(t, s.SaveAccount("casey"))

	require.NoError(t, s.Reset())

	_, ok := s.Account()
	assert.False(t, ok)

	second, err := s.EnsureClientID()
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "sign-out mints a fresh identity")
}
