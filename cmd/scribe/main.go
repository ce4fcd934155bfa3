// Command scribe inspects and maintains session directories: it prints
// reviewed history, tails the manifest, reports session status, and runs
// compaction. Capture itself runs inside the shell wrapper; this command
// only operates on what capture has persisted.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scribehq/scribe/pkg/config"
	"github.com/scribehq/scribe/pkg/logging"
)

var (
	flagConfig  string
	flagSession string

	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:           "scribe",
	Short:         "Inspect and maintain scribe session directories",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// On open failure New returns a stderr fallback that has
		// already reported the degradation.
		logger, _ = logging.New("cli")
		logger.Infof("command=%s args=%v", cmd.Name(), args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.scribe/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagSession, "session", "s", "", "session directory (default from config or SCRIBE_SESSION)")
}

// loadTarget resolves the effective config and the session directory the
// command operates on.
func loadTarget() (*config.Config, string, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, "", err
	}
	if flagSession != "" {
		cfg.SessionDir = flagSession
	}
	if cfg.SessionDir == "" {
		return nil, "", fmt.Errorf("no session directory: pass --session or set SCRIBE_SESSION")
	}
	return cfg, cfg.SessionDir, nil
}

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		if err != nil {
			logger.Errorf("command failed: %v", err)
		}
		logger.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
