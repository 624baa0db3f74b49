// Package main implements the entry point for the Mnemo API server, which
// stores users' mnemonic stories, schedules their associations for spaced
// repetition review and generates stories and quizzes with an LLM.
package main

import (
	"fmt"
	"os"

	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree:
//
//	mnemo-api serve
//	mnemo-api migrate up|down|status|version
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "mnemo-api",
		Short:         "Spaced repetition backend for mnemonic stories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"path to a YAML config file (default: ./config.yaml if present)")

	loadConfig := func() (*config.Config, error) {
		var (
			cfg *config.Config
			err error
		)
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(newServeCmd(loadConfig), newMigrateCmd(loadConfig))
	return root
}
