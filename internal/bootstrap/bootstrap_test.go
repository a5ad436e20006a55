package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	trackerdto "studytrack/internal/modules/tracker/dto"
	"studytrack/internal/platform/config"
)

func newConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.Backend = backend
	cfg.LogLevel = "error"
	return cfg
}

func TestAppPersistsAcrossRestarts(t *testing.T) {
	t.Parallel()
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		backend := backend
		t.Run(backend, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			cfg := newConfig(t, backend)

			app, err := New(ctx, cfg, Options{})
			require.NoError(t, err)
			require.Equal(t, "default", app.User.Name)
			created, err := app.TrackerCLI.CreateSubject(ctx, trackerdto.CreateSubjectInput{Name: "문학", Tag: "국어"})
			require.NoError(t, err)
			require.NoError(t, app.TrackerCLI.SetDailyGoal(ctx, trackerdto.SetGoalInput{Seconds: 3600}))
			require.NoError(t, app.Close())

			reopened, err := New(ctx, cfg, Options{})
			require.NoError(t, err)
			t.Cleanup(func() { _ = reopened.Close() })
			require.Equal(t, app.User.ID, reopened.User.ID)

			subjects, err := reopened.TrackerCLI.ListSubjects(ctx)
			require.NoError(t, err)
			require.Len(t, subjects, 1)
			require.Equal(t, created.ID, subjects[0].ID)

			stats, err := reopened.TrackerCLI.Stats(ctx)
			require.NoError(t, err)
			require.Equal(t, int64(3600), stats.Goal.Goal)
		})
	}
}

func TestAppIsolatesUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := newConfig(t, config.BackendFile)

	alice, err := New(ctx, cfg, Options{User: "alice"})
	require.NoError(t, err)
	_, err = alice.TrackerCLI.CreateSubject(ctx, trackerdto.CreateSubjectInput{Name: "미적분", Tag: "수학"})
	require.NoError(t, err)
	require.NoError(t, alice.Close())

	bob, err := New(ctx, cfg, Options{User: "bob"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bob.Close() })
	subjects, err := bob.TrackerCLI.ListSubjects(ctx)
	require.NoError(t, err)
	require.Empty(t, subjects)

	users, err := bob.AccountCLI.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestNewRejectsUnreachablePostgres(t *testing.T) {
	t.Parallel()
	cfg := newConfig(t, config.BackendPostgres)
	cfg.PostgresDSN = "postgres://nobody@127.0.0.1:1/none?connect_timeout=1"

	_, err := New(context.Background(), cfg, Options{})
	require.Error(t, err)
}
