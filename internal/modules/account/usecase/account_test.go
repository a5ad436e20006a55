package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountout "studytrack/internal/modules/account/adapter/out"
	"studytrack/internal/modules/account/domain"
	"studytrack/internal/modules/account/service"
	"studytrack/internal/modules/account/usecase"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/id"
	"studytrack/internal/platform/kv"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestRegisterResolveAndEnsure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	blobs, err := kv.NewSQLiteStore(filepath.Join(t.TempDir(), "studytrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	clk := fixedClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	uc := usecase.NewInteractor(service.NewAccountService(clk, id.UUID{}, accountout.NewBlobUserStore(blobs)))

	alice, err := uc.Register(ctx, "  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", alice.Name)
	assert.True(t, id.Valid(alice.ID))
	assert.True(t, alice.CreatedAt.Equal(clk.now))

	_, err = uc.Register(ctx, "alice")
	assert.True(t, errors.Is(err, domain.ErrDuplicateUserName))
	_, err = uc.Register(ctx, " ")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	byName, err := uc.Resolve(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)
	byID, err := uc.Resolve(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)
	_, err = uc.Resolve(ctx, "bob")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	again, err := uc.Ensure(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, again.ID)
	bob, err := uc.Ensure(ctx, "Bob")
	require.NoError(t, err)
	assert.NotEqual(t, alice.ID, bob.ID)

	users, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Bob", users[1].Name)
}
