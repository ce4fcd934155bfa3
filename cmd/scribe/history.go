package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribehq/scribe/pkg/session"
)

var flagHistoryMax int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the session's reviewed conversation history",
	Long: `Print the conversation history that would be loaded back into the
generation layer. Only reviewed files and compaction summaries are read;
raw part files never appear here.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, dir, err := loadTarget()
		if err != nil {
			return err
		}
		max := flagHistoryMax
		if max <= 0 {
			max = cfg.HistoryLoadMax
		}
		loader := &session.HistoryLoader{LoadMax: max}
		history, err := loader.Load(dir)
		if err != nil {
			return err
		}
		for _, entry := range history {
			fmt.Fprintf(cmd.OutOrStdout(), "--- %s ---\n%s", entry.Role, entry.Content)
			if len(entry.Content) > 0 && entry.Content[len(entry.Content)-1] != '\n' {
				fmt.Fprintln(cmd.OutOrStdout())
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryMax, "max", "n", 0, "maximum turns to load (default from config)")
	rootCmd.AddCommand(historyCmd)
}
