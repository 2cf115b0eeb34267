package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/grinzing/jukei-line-yesterday/pkg/bot"
	"github.com/grinzing/jukei-line-yesterday/pkg/config"
	"github.com/grinzing/jukei-line-yesterday/pkg/gateway"
	"github.com/grinzing/jukei-line-yesterday/pkg/line"
	"github.com/grinzing/jukei-line-yesterday/pkg/logger"
	"github.com/grinzing/jukei-line-yesterday/pkg/rules"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the LINE webhook server",
	Long:  "Runs the webhook server with signature verification, health endpoints, and the CSV rule engine.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.serve")

		if err := cfg.Validate(); err != nil {
			log.Error("Configuration invalid", "error", err)
			return
		}

		client, err := line.NewClient(cfg.Line.ChannelAccessToken, log)
		if err != nil {
			log.Error("Failed to initialize LINE client", "error", err)
			return
		}

		store := rules.NewStore(cfg.Rules.CSVPath, log)

		dispatcher, err := bot.NewDispatcher(store, client, log, dispatcherOptions(cfg)...)
		if err != nil {
			log.Error("Failed to initialize dispatcher", "error", err)
			return
		}

		svc, err := gateway.NewService(cfg, store, dispatcher, log)
		if err != nil {
			log.Error("Failed to initialize webhook server", "error", err)
			return
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("Serve started", "rules_path", cfg.Rules.CSVPath)
		if err := svc.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Webhook server failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// dispatcherOptions maps config to dispatcher options.
func dispatcherOptions(cfg *config.Config) []bot.Option {
	var opts []bot.Option
	if cfg.Line.ReplyTimeoutSeconds > 0 {
		opts = append(opts, bot.WithReplyTimeout(time.Duration(cfg.Line.ReplyTimeoutSeconds)*time.Second))
	}

	return opts
}
