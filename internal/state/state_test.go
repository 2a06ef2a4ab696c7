package state_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vectorious/lilbot/internal/state"
)

func TestState_FreshFile(t *testing.T) {
	s, err := state.Load(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	require.Empty(t, s.LastMovie())
	require.Empty(t, s.LastCharacter())
	require.Empty(t, s.TriviaToken())
}

func TestState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := state.Load(path)
	require.NoError(t, err)

	require.NoError(t, s.SetLastQuote("Casablanca", "Rick Blaine"))
	s.SetTriviaToken("token-1")

	reloaded, err := state.Load(path)
	require.NoError(t, err)
	require.Equal(t, "Casablanca", reloaded.LastMovie())
	require.Equal(t, "Rick Blaine", reloaded.LastCharacter())
	require.Equal(t, "token-1", reloaded.TriviaToken())
}

func TestState_CreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "state.json")

	s, err := state.Load(path)
	require.NoError(t, err)
	require.NoError(t, s.SetLastQuote("Casablanca", "Rick Blaine"))

	reloaded, err := state.Load(path)
	require.NoError(t, err)
	require.Equal(t, "Casablanca", reloaded.LastMovie())
}

func TestState_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{torn"), 0o644))

	_, err := state.Load(path)
	require.Error(t, err)
}
