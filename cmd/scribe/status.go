package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scribehq/scribe/pkg/manifest"
	"github.com/scribehq/scribe/pkg/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize a session directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dir, err := loadTarget()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		pending, err := session.PendingParts(dir)
		if err != nil {
			return err
		}
		reviewed, err := session.ListReviewed(dir)
		if err != nil {
			return err
		}
		records, err := manifest.LoadAll(dir)
		if err != nil {
			return err
		}
		compactions := 0
		for _, rec := range records {
			if manifest.Compaction(rec) != nil {
				compactions++
			}
		}

		consoleBytes := int64(0)
		if info, err := os.Stat(session.ConsoleLogPath(dir)); err == nil {
			consoleBytes = info.Size()
		}

		fmt.Fprintf(out, "session:           %s\n", dir)
		fmt.Fprintf(out, "pending parts:     %d\n", len(pending))
		fmt.Fprintf(out, "reviewed files:    %d\n", len(reviewed))
		fmt.Fprintf(out, "manifest records:  %d (%d compactions)\n", len(records), compactions)
		fmt.Fprintf(out, "console log:       %d bytes\n", consoleBytes)
		fmt.Fprintf(out, "muted:             %v\n", session.Muted(dir))
		if pid := session.ReadPID(dir); pid != 0 {
			fmt.Fprintf(out, "shell pid:         %d\n", pid)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
