package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	accountinadapter "studytrack/internal/modules/account/adapter/in"
	accountoutadapter "studytrack/internal/modules/account/adapter/out"
	accountdto "studytrack/internal/modules/account/dto"
	accountservice "studytrack/internal/modules/account/service"
	accountusecase "studytrack/internal/modules/account/usecase"
	hookinadapter "studytrack/internal/modules/hook/adapter/in"
	hookoutadapter "studytrack/internal/modules/hook/adapter/out"
	hookservice "studytrack/internal/modules/hook/service"
	hookusecase "studytrack/internal/modules/hook/usecase"
	trackerinadapter "studytrack/internal/modules/tracker/adapter/in"
	trackeroutadapter "studytrack/internal/modules/tracker/adapter/out"
	trackerservice "studytrack/internal/modules/tracker/service"
	trackerusecase "studytrack/internal/modules/tracker/usecase"
	"studytrack/internal/platform/calendar"
	"studytrack/internal/platform/clock"
	"studytrack/internal/platform/config"
	"studytrack/internal/platform/id"
	"studytrack/internal/platform/kv"
	"studytrack/internal/platform/logging"
	"studytrack/internal/platform/slug"
	uiapp "studytrack/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     hclog.Logger
	User       accountdto.UserOutput
	AccountCLI accountinadapter.CLIHandler
	TrackerCLI trackerinadapter.CLIHandler
	HookCLI    hookinadapter.CLIHandler

	closers []func() error
}

type Options struct {
	// User overrides the configured user name.
	User string
	// LogLevel overrides the configured level.
	LogLevel string
}

func New(ctx context.Context, cfg config.Config, opts Options) (_ *App, err error) {
	if opts.User != "" {
		cfg.User = opts.User
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	logger, logCloser, err := logging.NewFile("studytrack", cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return nil, err
	}
	app.Logger = logger
	app.closers = append(app.closers, logCloser.Close)

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, blobs.Close)

	clk := clock.SystemClock{}
	ids := id.UUID{}

	accountUC := accountusecase.NewInteractor(accountservice.NewAccountService(clk, ids, accountoutadapter.NewBlobUserStore(blobs)))
	user, err := accountUC.Ensure(ctx, cfg.User)
	if err != nil {
		return nil, fmt.Errorf("resolve user %q: %w", cfg.User, err)
	}
	app.User = user

	cal, err := calendar.New(cfg.UTCOffsetHours)
	if err != nil {
		return nil, err
	}

	hookUC := hookusecase.NewInteractor(hookservice.NewHookService(
		hookoutadapter.NewFileManifestStore(cfg.StateDir),
		hookoutadapter.NewGRPCHost(logger),
		logger,
	))

	engine := trackerservice.NewEngine(
		user.ID,
		clk,
		clk,
		cal,
		ids,
		trackeroutadapter.NewBlobSessionStore(blobs),
		logger,
		trackerservice.EngineConfig{Categories: cfg.Categories},
	)
	if err := engine.Load(ctx); err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() error { engine.Close(); return nil })
	if cfg.JournalEnabled {
		engine.AddListener(trackeroutadapter.NewVaultJournal(filepath.Join(cfg.DataDir, "journal", slug.Make(user.Name))))
	}
	engine.AddListener(trackeroutadapter.NewHookNotifier(hookUC, logger))

	scheduler := trackerservice.NewScheduler(engine, clk, clk, cfg.RolloverInterval, logger)
	trackerUC := trackerusecase.NewInteractor(engine, scheduler, trackerusecase.Options{
		StreakThreshold: int64(cfg.StreakThreshold / time.Second),
		HeatmapDays:     cfg.HeatmapDays,
	})
	if _, err := trackerUC.CheckRollover(ctx); err != nil {
		logger.Warn("startup rollover check failed", "error", err)
	}

	app.AccountCLI = accountinadapter.NewCLIHandler(accountUC)
	app.TrackerCLI = trackerinadapter.NewCLIHandler(trackerUC)
	app.HookCLI = hookinadapter.NewCLIHandler(hookUC)
	logger.Debug("app ready", "user", user.Name, "backend", cfg.Backend)
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openBlobStore(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return kv.NewSQLiteStore(cfg.SQLitePath)
	case config.BackendPostgres:
		return kv.OpenPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return kv.NewFileStore(cfg.BlobDir())
	}
}

// RunTUI runs the terminal UI with the rollover scheduler in the background
// and flushes the running timer on exit.
func RunTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := app.TrackerCLI.Watch(ctx); err != nil {
			app.Logger.Warn("rollover scheduler stopped", "error", err)
		}
	}()

	model := uiapp.NewModel(app.User.Name, app.Config.Categories, app.TrackerCLI, app.HookCLI)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	_, runErr := program.Run()

	flushed, err := app.TrackerCLI.Flush(context.Background())
	if err != nil {
		app.Logger.Error("flush on exit failed", "error", err)
	} else if flushed.Flushed {
		app.Logger.Info("flushed running timer on exit", "subject", flushed.Subject, "seconds", flushed.Seconds)
	}
	return errors.Join(runErr, err)
}
