package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dirsentry/dirsentry/internal/registry"
	"github.com/dirsentry/dirsentry/internal/report"
)

// newScanCmd creates the scan command: a one-shot seed pass with no watching.
func newScanCmd() *cobra.Command {
	var utcOffset int

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "List the top-level directories a watch would seed",
		Long: `Scan performs the same seeding pass as watch and prints the immediate
subdirectories it finds, then exits. Useful for verifying what a watch
session would track without starting one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			absRoot, err := resolveWatchRoot(root)
			if err != nil {
				return err
			}

			_, seeded, err := registry.Seed(absRoot)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			loc := report.FixedOffset(utcOffset)
			for _, path := range seeded {
				fmt.Fprintf(out, "Initially found directory: %q, %s\n",
					path, time.Now().In(loc).Format(report.TimeFormat))
			}
			fmt.Fprintf(out, "%d top-level directories\n", len(seeded))
			return nil
		},
	}

	cmd.Flags().IntVar(&utcOffset, "utc-offset", -5, "Fixed UTC offset in hours for timestamps")
	return cmd
}
