package tool

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUIDV7(t *testing.T) {
	id, err := uuid.Parse(GenerateUUIDV7())
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), id.Version())
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"hello-world": true, "hello-world-1": true}
	s, err := UniqueSlug("Hello, World!", func(c string) (bool, error) { return taken[c], nil })
	require.NoError(t, err)
	require.Equal(t, "hello-world-2", s)

	s, err = UniqueSlug("Fresh Title", func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	require.Equal(t, "fresh-title", s)

	boom := errors.New("db down")
	_, err = UniqueSlug("x", func(string) (bool, error) { return false, boom })
	require.ErrorIs(t, err, boom)
}
