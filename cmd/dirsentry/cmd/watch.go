package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/dirsentry/dirsentry/internal/classify"
	"github.com/dirsentry/dirsentry/internal/config"
	senerr "github.com/dirsentry/dirsentry/internal/errors"
	"github.com/dirsentry/dirsentry/internal/history"
	"github.com/dirsentry/dirsentry/internal/logging"
	"github.com/dirsentry/dirsentry/internal/notify"
	"github.com/dirsentry/dirsentry/internal/registry"
	"github.com/dirsentry/dirsentry/internal/report"
	"github.com/dirsentry/dirsentry/internal/resolver"
)

// watchFlags holds the flag values shared between the root command and the
// watch subcommand. Only flags the user actually changed override config.
type watchFlags struct {
	interval    time.Duration
	forcePoll   bool
	placeholder string
	quiet       bool
	eventLog    string
	sqlitePath  string
	utcOffset   int
	maxDepth    int
}

// register binds the watch flags to a flag set.
func (f *watchFlags) register(flags *pflag.FlagSet) {
	flags.DurationVar(&f.interval, "interval", time.Second, "Poll interval for the polling backend")
	flags.BoolVar(&f.forcePoll, "poll", false, "Force the polling backend instead of fsnotify")
	flags.StringVar(&f.placeholder, "placeholder", classify.DefaultPlaceholder, "Directory name excluded from create/remove reports (empty disables)")
	flags.BoolVar(&f.quiet, "quiet", false, "Suppress console output of events")
	flags.StringVar(&f.eventLog, "log-file", "", "Append classified events to this file")
	flags.StringVar(&f.sqlitePath, "sqlite", "", "Record classified events in this SQLite database")
	flags.IntVar(&f.utcOffset, "utc-offset", -5, "Fixed UTC offset in hours for event timestamps")
	flags.IntVar(&f.maxDepth, "max-depth", 0, "Limit move-resolution scan depth (0 = unbounded)")
}

// apply overlays changed flags onto the loaded configuration.
func (f *watchFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("interval") {
		cfg.Watch.PollInterval = f.interval.String()
	}
	if flags.Changed("poll") {
		cfg.Watch.ForcePolling = f.forcePoll
	}
	if flags.Changed("placeholder") {
		cfg.Watch.Placeholder = f.placeholder
	}
	if flags.Changed("quiet") {
		cfg.Report.Quiet = f.quiet
	}
	if flags.Changed("log-file") {
		cfg.Report.FilePath = f.eventLog
	}
	if flags.Changed("sqlite") {
		cfg.Report.SQLitePath = f.sqlitePath
	}
	if flags.Changed("utc-offset") {
		cfg.Report.UTCOffsetHours = f.utcOffset
	}
	if flags.Changed("max-depth") {
		cfg.Resolver.MaxDepth = f.maxDepth
	}
}

// newWatchCmd creates the watch command.
func newWatchCmd() *cobra.Command {
	opts := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a directory tree and report top-level changes",
		Long: `Watch seeds the known-directory set from the root's immediate children,
then classifies raw create/remove notifications into created, removed,
and moved events until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runWatch(cmd, root, opts)
		},
	}

	opts.register(cmd.Flags())
	return cmd
}

// runWatch is the steady-state watch loop.
func runWatch(cmd *cobra.Command, root string, opts *watchFlags) error {
	out := cmd.OutOrStdout()

	absRoot, err := resolveWatchRoot(root)
	if err != nil {
		return err
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return err
	}
	opts.apply(cmd.Flags(), cfg)

	// --debug already installed a logger in PersistentPreRunE; otherwise
	// diagnostics go to the configured file only, keeping stdout clean for
	// event lines. A failed logging setup never blocks the watch.
	if !debugMode {
		logCfg := logging.DefaultConfig()
		logCfg.Level = cfg.Logging.Level
		logCfg.WriteToStderr = false
		if cfg.Logging.FilePath != "" {
			logCfg.FilePath = cfg.Logging.FilePath
		}
		if logger, cleanup, logErr := logging.Setup(logCfg); logErr == nil {
			defer cleanup()
			slog.SetDefault(logger)
		}
	}

	// One watcher per root; a second instance would double-report
	lock := flock.New(lockPathFor(absRoot))
	if err := os.MkdirAll(filepath.Dir(lock.Path()), 0o755); err != nil {
		return senerr.Wrap(senerr.ErrCodeInternal, err)
	}
	locked, err := lock.TryLock()
	if err != nil {
		return senerr.Wrap(senerr.ErrCodeInternal, err)
	}
	if !locked {
		return senerr.New(senerr.ErrCodeLockHeld,
			fmt.Sprintf("another dirsentry is already watching %s", absRoot), nil)
	}
	defer func() { _ = lock.Unlock() }()

	loc := report.FixedOffset(cfg.Report.UTCOffsetHours)

	reg, seeded, err := registry.Seed(absRoot)
	if err != nil {
		return err
	}
	for _, path := range seeded {
		fmt.Fprintf(out, "Initially found directory: %q, %s\n",
			path, time.Now().In(loc).Format(report.TimeFormat))
	}

	rep, err := buildReporter(cfg, out)
	if err != nil {
		return err
	}
	defer func() { _ = rep.Close() }()

	hist, err := history.New(cfg.History.Capacity)
	if err != nil {
		return senerr.Wrap(senerr.ErrCodeInternal, err)
	}

	res := resolver.New(resolver.Options{
		FollowSymlinks: !cfg.Resolver.NoFollowSymlinks,
		MaxDepth:       cfg.Resolver.MaxDepth,
	})
	cls := classify.New(absRoot, reg, res, cfg.Watch.Placeholder)

	pollInterval, err := cfg.PollInterval()
	if err != nil {
		return senerr.ConfigError("invalid poll interval", err)
	}
	notifier, err := notify.New(notify.Options{
		PollInterval:    pollInterval,
		EventBufferSize: cfg.Watch.EventBufferSize,
		ForcePolling:    cfg.Watch.ForcePolling,
	})
	if err != nil {
		return senerr.WatchError("failed to create notifier", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Monitoring for changes, %s\n",
		time.Now().In(loc).Format(report.TimeFormat))
	slog.Info("watch started",
		slog.String("root", absRoot),
		slog.String("backend", notifier.Backend()),
		slog.Int("seeded", len(seeded)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := notifier.Start(gctx, absRoot)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		err := cls.Run(gctx, notify.Merge(gctx, notifier), func(ev classify.Event) {
			hist.Record(ev)
			if err := rep.Report(ev); err != nil {
				slog.Warn("report failed",
					slog.String("type", ev.Type.String()),
					slog.String("error", err.Error()))
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	runErr := g.Wait()
	_ = notifier.Stop()

	printSummary(out, hist)
	slog.Info("watch stopped", slog.Int("events", hist.Total()))
	return runErr
}

// resolveWatchRoot validates the root and returns its absolute path.
func resolveWatchRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", senerr.Wrap(senerr.ErrCodeInternal, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return "", senerr.New(senerr.ErrCodeRootMissing,
			fmt.Sprintf("watch root does not exist: %s", absRoot), err)
	}
	if !info.IsDir() {
		return "", senerr.New(senerr.ErrCodeRootNotDir,
			fmt.Sprintf("watch root is not a directory: %s", absRoot), nil)
	}
	return absRoot, nil
}

// lockPathFor returns the single-instance lock path for a watch root.
// Locks live outside the watched tree so they never show up as events.
func lockPathFor(root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	name := hex.EncodeToString(sum[:8]) + ".lock"

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".dirsentry", "run", name)
	}
	return filepath.Join(home, ".dirsentry", "run", name)
}

// buildReporter assembles the configured sinks.
func buildReporter(cfg *config.Config, out io.Writer) (report.Reporter, error) {
	var sinks []report.Reporter

	if !cfg.Report.Quiet {
		sinks = append(sinks, report.NewConsole(out, cfg.Report.UTCOffsetHours))
	}
	if cfg.Report.FilePath != "" {
		fr, err := report.NewFile(cfg.Report.FilePath, cfg.Report.UTCOffsetHours)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fr)
	}
	if cfg.Report.SQLitePath != "" {
		sr, err := report.NewSQLite(cfg.Report.SQLitePath, cfg.Report.UTCOffsetHours)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sr)
	}

	return report.Multi(sinks...), nil
}

// printSummary renders session counts and the retained recent events.
func printSummary(out io.Writer, hist *history.Log) {
	fmt.Fprintf(out, "\nSession summary: %d created, %d moved, %d removed, %d watch errors\n",
		hist.Count(classify.TypeCreated),
		hist.Count(classify.TypeMoved),
		hist.Count(classify.TypeRemoved),
		hist.Count(classify.TypeWatchError))

	entries := hist.Recent()
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(out, "Last %d events:\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(out, "  %s\n", report.FormatLine(e.Event, e.Time))
	}
}
