package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribehq/scribe/pkg/manifest"
)

var flagTailCount int

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the newest manifest message records",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dir, err := loadTarget()
		if err != nil {
			return err
		}
		records, err := manifest.LoadAll(dir)
		if err != nil {
			return err
		}
		for _, rec := range manifest.TailMessages(records, flagTailCount) {
			msg := manifest.Message(rec)
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %-5s  %8d bytes  %s  %s\n",
				msg.ID, msg.Role, msg.Decision, msg.Bytes, msg.Hash64, msg.ReviewedPath)
		}
		return nil
	},
}

func init() {
	tailCmd.Flags().IntVarP(&flagTailCount, "count", "n", 10, "number of message records to print")
	rootCmd.AddCommand(tailCmd)
}
