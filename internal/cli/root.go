// Package cli wires the bot and its offline tools into a cobra command
// tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "lilbot",
		Short: "Discord trivia bot with movie quotes and a millionaire ladder",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(newStartCmd(&configPath))
	cmd.AddCommand(newLeaderboardCmd(&configPath))
	cmd.AddCommand(newArchiveCmd(&configPath))
	return cmd
}
