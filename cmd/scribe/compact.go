package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribehq/scribe/pkg/manifest"
	"github.com/scribehq/scribe/pkg/session"
)

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Fold old manifest messages into a compaction summary",
	Long: `Run deterministic compaction: when more un-compacted message records
have accumulated than the configured trigger, the oldest chunk is folded
into a summary file and a compaction record is appended. Existing records
are never rewritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := loadTarget()
		if err != nil {
			return err
		}
		records, err := manifest.LoadAll(dir)
		if err != nil {
			return err
		}
		rec, err := session.MaybeCompact(dir, records, session.CompactionConfig{
			Enabled:         true, // an explicit invocation always may compact
			TriggerMessages: cfg.Compaction.TriggerMessages,
			ChunkMessages:   cfg.Compaction.ChunkMessages,
		})
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to compact")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "compacted %d records (%s..%s) into %s\n",
			rec.SourceCount, rec.FromID, rec.ToID, rec.SummaryPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compactCmd)
}
