package kv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/kv"
)

func TestStoresShareContract(t *testing.T) {
	t.Parallel()
	backends := map[string]func(t *testing.T) kv.Store{
		"memory": func(*testing.T) kv.Store { return kv.NewMemoryStore() },
		"file": func(t *testing.T) kv.Store {
			s, err := kv.NewFileStore(filepath.Join(t.TempDir(), "blobs"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) kv.Store {
			s, err := kv.NewSQLiteStore(filepath.Join(t.TempDir(), ".studytrack", "studytrack.db"))
			require.NoError(t, err)
			return s
		},
	}
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := open(t)
			t.Cleanup(func() { _ = store.Close() })

			_, err := store.Get(ctx, "studyData_u1")
			assert.ErrorIs(t, err, apperrors.ErrNotFound)

			require.NoError(t, store.Set(ctx, "studyData_u1", []byte(`{"dailyGoal":60}`)))
			require.NoError(t, store.Set(ctx, "studyData_u1", []byte(`{"dailyGoal":120}`)))
			got, err := store.Get(ctx, "studyData_u1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"dailyGoal":120}`, string(got))

			require.NoError(t, store.Delete(ctx, "studyData_u1"))
			require.NoError(t, store.Delete(ctx, "studyData_u1"))
			_, err = store.Get(ctx, "studyData_u1")
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	}
}

func TestValidateKeyRejectsTraversal(t *testing.T) {
	t.Parallel()
	store := kv.NewMemoryStore()
	for _, key := range []string{"", "../etc/passwd", "a/b", ".hidden", "with space"} {
		err := store.Set(context.Background(), key, []byte("x"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, key)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store, err := kv.NewFileStore(dir)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Set(context.Background(), "users", []byte(`[]`)))
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "users.json", entries[0].Name())
}
