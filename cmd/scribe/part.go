package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scribehq/scribe/pkg/session"
)

var partCmd = &cobra.Command{
	Use:   "part",
	Short: "Persist conversation content as raw part files",
}

var partUserCmd = &cobra.Command{
	Use:   "user",
	Short: "Save a user query read from stdin as a part file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return savePart(cmd, func(store *session.PartStore, dir, content string) (string, error) {
			return store.SaveUser(dir, content)
		})
	},
}

var partAssistantCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Save an assistant response read from stdin as a part file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return savePart(cmd, func(store *session.PartStore, dir, content string) (string, error) {
			return store.SaveAssistant(dir, content)
		})
	},
}

func savePart(cmd *cobra.Command, save func(*session.PartStore, string, string) (string, error)) error {
	_, dir, err := loadTarget()
	if err != nil {
		return err
	}
	body, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	path, err := save(session.NewPartStore(nil), dir, string(body))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func init() {
	partCmd.AddCommand(partUserCmd, partAssistantCmd)
	rootCmd.AddCommand(partCmd)
}
