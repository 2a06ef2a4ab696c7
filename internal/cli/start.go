package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vectorious/lilbot/internal/bot"
	"github.com/vectorious/lilbot/internal/config"
)

func newStartCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Connect to Discord and serve commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(*configPath)
		},
	}
}

func runStart(configPath string) error {
	c, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, os.Interrupt)

	b, err := bot.Init(c)
	if err != nil {
		return fmt.Errorf("init bot: %w", err)
	}

	go b.Start()

	<-shutdown
	b.Shutdown()
	return nil
}

func loadConfig(path string) (bot.Config, error) {
	var c bot.Config
	if err := config.Load(path, &c); err != nil {
		return c, fmt.Errorf("load config: %w", err)
	}

	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		c.Discord.Token = token
	}
	return c, nil
}
