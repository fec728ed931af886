package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikram583135/platepal2.o-sub000/internal/domain"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cart.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestStore_SaveLoadOverwrite(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "cart-storage:v1:abc", []byte(`{"version":1}`)))
	require.NoError(t, s.Save(ctx, "cart-storage:v1:abc", []byte(`{"version":1,"items":[]}`)))

	got, err := s.Load(ctx, "cart-storage:v1:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"items":[]}`, string(got))
}

func TestStore_LoadMissing(t *testing.T) {
	s, _ := openTemp(t)

	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "k", []byte("payload")))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestStore_Delete(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "k", []byte("x")))

	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Load(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, s.Delete(ctx, "k"))
}
