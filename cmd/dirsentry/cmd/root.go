// Package cmd provides the CLI commands for dirsentry.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dirsentry/dirsentry/internal/logging"
	"github.com/dirsentry/dirsentry/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the dirsentry CLI.
func NewRootCmd() *cobra.Command {
	watchOpts := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "dirsentry",
		Short: "Track creation, removal, and moves of top-level directories",
		Long: `dirsentry watches a directory tree and reports semantic changes to its
top-level subdirectories: creation, removal, and rename/move.

The underlying notification layer only reports raw create/remove
primitives; dirsentry reconstructs moves by re-scanning the tree when a
tracked directory disappears.

Run 'dirsentry' in a directory to start watching it.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation watches the current directory
			return runWatch(cmd, ".", watchOpts)
		},
	}

	cmd.SetVersionTemplate("dirsentry version {{.Version}}\n")

	watchOpts.register(cmd.Flags())

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.dirsentry/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging enables debug logging if the flag is set.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}

	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("Debug logging enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

// stopLogging flushes debug logging.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
