package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studytrack/internal/bootstrap"
	trackerdto "studytrack/internal/modules/tracker/dto"
	"studytrack/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	dataDir  string
	user     string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "studytrack",
		Short:         "Per-subject study timer with daily rollover",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data", defaultDataDir(), "data directory")
	root.PersistentFlags().StringVar(&flags.user, "user", "", "user name (defaults to config)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newUserCmd(flags))
	root.AddCommand(newSubjectCmd(flags))
	root.AddCommand(newTimerCmd(flags))
	root.AddCommand(newGoalCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	root.AddCommand(newSessionsCmd(flags))
	root.AddCommand(newHeatmapCmd(flags))
	root.AddCommand(newRolloverCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newImportCmd(flags))
	root.AddCommand(newClearCmd(flags))
	root.AddCommand(newHookCmd(flags))
	return root
}

func defaultDataDir() string {
	if dir := os.Getenv("STUDYTRACK_DATA"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home + string(os.PathSeparator) + ".studytrack"
}

func loadApp(ctx context.Context, flags *rootFlags) (*bootstrap.App, error) {
	cfg, err := config.Load(flags.dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, bootstrap.Options{User: flags.user, LogLevel: flags.logLevel})
}

// withApp loads the app, runs fn and releases the app's resources.
func withApp(flags *rootFlags, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx := context.Background()
	app, err := loadApp(ctx, flags)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(ctx, app)
}

func parseSubjectID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject id %q", arg)
	}
	return id, nil
}

func clock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run studytrack terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			app, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(ctx, app)
		},
	}
}

func newUserCmd(flags *rootFlags) *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage local users"}

	user.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				u, err := app.AccountCLI.Register(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user registered: %s id=%s\n", u.Name, u.ID)
				return nil
			})
		},
	})

	user.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				users, err := app.AccountCLI.List(ctx)
				if err != nil {
					return err
				}
				for _, u := range users {
					marker := " "
					if u.ID == app.User.ID {
						marker = "*"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\n", marker, u.ID, u.Name, u.CreatedAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	})
	return user
}

func newSubjectCmd(flags *rootFlags) *cobra.Command {
	subject := &cobra.Command{Use: "subject", Short: "Manage subjects"}

	var tag string
	add := &cobra.Command{
		Use:   "add --tag <tag> <name>",
		Short: "Create a subject under a category tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(tag) == "" {
				return fmt.Errorf("--tag is required")
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.TrackerCLI.CreateSubject(ctx, trackerdto.CreateSubjectInput{Name: strings.Join(args, " "), Tag: tag})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "subject created: %d %s tag=%s color=%s\n", s.ID, s.Name, s.Tag, s.Color)
				return nil
			})
		},
	}
	add.Flags().StringVar(&tag, "tag", "", "category tag")

	subject.AddCommand(add)
	subject.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List subjects with today's time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				subjects, err := app.TrackerCLI.ListSubjects(ctx)
				if err != nil {
					return err
				}
				if len(subjects) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no subjects")
					return nil
				}
				for _, s := range subjects {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\ttoday=%s\ttotal=%s\n", s.ID, s.Tag, s.Name, clock(s.LiveSeconds), clock(s.TotalSeconds))
				}
				return nil
			})
		},
	})
	subject.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subject and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSubjectID(args[0])
			if err != nil {
				return err
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.TrackerCLI.DeleteSubject(ctx, id)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "subject deleted: %d %s\n", s.ID, s.Name)
				return nil
			})
		},
	})
	return subject
}

func newTimerCmd(flags *rootFlags) *cobra.Command {
	timer := &cobra.Command{Use: "timer", Short: "Subject timers"}

	var limit time.Duration
	run := &cobra.Command{
		Use:   "run <subject-id>",
		Short: "Run a subject timer in the foreground until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSubjectID(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}
			app, err := loadApp(ctx, flags)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return runTimer(ctx, cmd.OutOrStdout(), app, id)
		},
	}
	run.Flags().DurationVar(&limit, "for", 0, "stop after this long (e.g. 25m)")

	timer.AddCommand(run)
	timer.AddCommand(&cobra.Command{
		Use:   "reset <subject-id>",
		Short: "Zero a subject's time for today without archiving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSubjectID(args[0])
			if err != nil {
				return err
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.TrackerCLI.ResetTimer(ctx, id); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "timer reset: %d\n", id)
				return nil
			})
		},
	})
	return timer
}

func runTimer(ctx context.Context, out io.Writer, app *bootstrap.App, subjectID int) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := app.TrackerCLI.Watch(watchCtx); err != nil {
			app.Logger.Warn("rollover scheduler stopped", "error", err)
		}
	}()

	if err := app.TrackerCLI.StartTimer(ctx, subjectID); err != nil {
		return err
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			flushed, err := app.TrackerCLI.Flush(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			if flushed.Flushed {
				_, _ = fmt.Fprintf(out, "session archived: %s %s\n", flushed.Subject, clock(flushed.Seconds))
			}
			return nil
		case <-ticker.C:
			d, err := app.TrackerCLI.Dashboard(ctx)
			if err != nil {
				continue
			}
			for _, s := range d.Subjects {
				if s.ID == subjectID {
					_, _ = fmt.Fprintf(out, "\r%s %s  today %s", s.Name, clock(s.LiveSeconds), clock(d.Stats.Today))
				}
			}
		}
	}
}

func newGoalCmd(flags *rootFlags) *cobra.Command {
	goal := &cobra.Command{Use: "goal", Short: "Daily goal"}
	goal.AddCommand(&cobra.Command{
		Use:   "set <duration>",
		Short: "Set today's goal (e.g. 3h, 90m)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[0], err)
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.TrackerCLI.SetDailyGoal(ctx, trackerdto.SetGoalInput{Seconds: int64(d / time.Second)}); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "daily goal set: %s\n", clock(int64(d/time.Second)))
				return nil
			})
		},
	})
	return goal
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today, week, month, streak and goal progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.TrackerCLI.Stats(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "date: %s\ntoday: %s\nweek: %s\nmonth: %s\nstreak: %d\n", s.Date, clock(s.Today), clock(s.Week), clock(s.Month), s.Streak)
				if s.Goal.Goal > 0 {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goal: %s (%.0f%%)\n", s.Goal.Text, s.Goal.Ratio*100)
				}
				return nil
			})
		},
	}
}

func newSessionsCmd(flags *rootFlags) *cobra.Command {
	var date string
	sessions := &cobra.Command{
		Use:   "sessions [--date YYYY-MM-DD]",
		Short: "List archived sessions for a day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				list, err := app.TrackerCLI.SessionsForDate(ctx, date)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range list {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", s.Date, s.Tag, s.Subject, clock(s.Duration), s.EndTime.Format(time.RFC3339))
				}
				return nil
			})
		},
	}
	sessions.Flags().StringVar(&date, "date", "", "day to list (defaults to today)")
	return sessions
}

func newHeatmapCmd(flags *rootFlags) *cobra.Command {
	var tag string
	var subjectID, days int
	heatmap := &cobra.Command{
		Use:   "heatmap (--tag <tag> | --subject <id>)",
		Short: "Print a daily-study heatmap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				hm, err := app.TrackerCLI.Heatmap(ctx, trackerdto.HeatmapInput{Tag: tag, SubjectID: subjectID, Days: days})
				if err != nil {
					return err
				}
				writeHeatmap(cmd.OutOrStdout(), hm)
				return nil
			})
		},
	}
	heatmap.Flags().StringVar(&tag, "tag", "", "category tag")
	heatmap.Flags().IntVar(&subjectID, "subject", 0, "subject id")
	heatmap.Flags().IntVar(&days, "days", 0, "window in days (defaults to config)")
	return heatmap
}

var heatGlyphs = [5]string{"·", "░", "▒", "▓", "█"}

func writeHeatmap(out io.Writer, hm trackerdto.HeatmapOutput) {
	_, _ = fmt.Fprintf(out, "%s  %s..%s  total=%s\n", hm.Label, hm.From, hm.To, clock(hm.Total))
	for d := 0; d < 7; d++ {
		var sb strings.Builder
		sb.WriteString(hm.Rows[d] + " ")
		for _, week := range hm.Weeks {
			c := week[d]
			if c.Future || c.Date == "" || c.Level < 0 || c.Level >= len(heatGlyphs) {
				sb.WriteString(" ")
				continue
			}
			sb.WriteString(heatGlyphs[c.Level])
		}
		_, _ = fmt.Fprintln(out, sb.String())
	}
}

func newRolloverCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Close the previous day if the date changed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				r, err := app.TrackerCLI.CheckRollover(ctx)
				if err != nil {
					return err
				}
				if !r.Rolled {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no rollover: current=%s\n", r.Current)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rolled over: %s -> %s archived=%d total=%s\n", r.Previous, r.Current, r.Archived, clock(r.Total))
				return nil
			})
		},
	}
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var outPath string
	export := &cobra.Command{
		Use:   "export [--out file]",
		Short: "Export the user's data as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				payload, err := app.TrackerCLI.Export(ctx)
				if err != nil {
					return err
				}
				if outPath == "" || outPath == "-" {
					_, err = cmd.OutOrStdout().Write(append(payload, '\n'))
					return err
				}
				if err := os.WriteFile(outPath, payload, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported: %s\n", outPath)
				return nil
			})
		},
	}
	export.Flags().StringVar(&outPath, "out", "", "output file (defaults to stdout)")
	return export
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the user's data with an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TrackerCLI.Import(ctx, payload)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported: subjects=%d sessions=%d\n", out.Subjects, out.Sessions)
				return nil
			})
		},
	}
}

func newClearCmd(flags *rootFlags) *cobra.Command {
	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear --yes",
		Short: "Delete all subjects, sessions and goals for the user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("--yes is required")
			}
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.TrackerCLI.Clear(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleared data for %s\n", app.User.Name)
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return clearCmd
}

func newHookCmd(flags *rootFlags) *cobra.Command {
	hook := &cobra.Command{Use: "hook", Short: "Day-closed hook operations"}
	hook.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List hook manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				hooks, err := app.HookCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(hooks) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no hooks configured")
					return nil
				}
				for _, h := range hooks {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t events=%s binary=%s\n", h.Name, h.Version, h.Enabled, strings.Join(h.Events, ","), h.Binary)
				}
				return nil
			})
		},
	})

	hook.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate hook checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				results, err := app.HookCLI.Doctor(ctx)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no hooks configured")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
					if r.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})
	return hook
}
