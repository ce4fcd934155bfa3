package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scribehq/scribe/pkg/session"
)

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Suppress console capture for the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dir, err := loadTarget()
		if err != nil {
			return err
		}
		if err := session.SetMuted(dir, true); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "capture muted")
		return nil
	},
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Resume console capture for the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, dir, err := loadTarget()
		if err != nil {
			return err
		}
		if err := session.SetMuted(dir, false); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "capture unmuted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(muteCmd)
	rootCmd.AddCommand(unmuteCmd)
}
