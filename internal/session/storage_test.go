package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"craft-storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	ctx := context.Background()

	assert.Equal(t, "", Token(ctx, s))
	_, err := CachedUser(ctx, s)
	assert.ErrorIs(t, err, ErrNotFound)

	user := &models.User{ID: "u1", Name: "Asha", Addresses: []models.Address{{ID: "a1", IsDefault: true}}}
	require.NoError(t, Save(ctx, s, "tok-1", user))

	assert.Equal(t, "tok-1", Token(ctx, s))
	cached, err := CachedUser(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "Asha", cached.Name)
	assert.Len(t, cached.Addresses, 1)

	require.NoError(t, Clear(ctx, s))
	assert.Equal(t, "", Token(ctx, s))
	_, err = s.Get(ctx, UserKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStorage(t, NewFileStorage(path))
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, NewFileStorage(path).Set(ctx, TokenKey, "persisted"))
	assert.Equal(t, "persisted", Token(ctx, NewFileStorage(path)))
}

func TestRedisStorage(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	s, err := NewRedisStorage(context.Background(), url, "storefront-test", 0)
	require.NoError(t, err)
	defer s.Close()
	exerciseStorage(t, s)
}
