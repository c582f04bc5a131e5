package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doorman-bot/doorman/internal/infrastructure/config"
	"github.com/doorman-bot/doorman/internal/infrastructure/telegram"
	"github.com/doorman-bot/doorman/internal/infrastructure/watch"
	"github.com/doorman-bot/doorman/internal/infrastructure/wiring"
	"github.com/doorman-bot/doorman/pkg/application"
)

const reloadDebounce = time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot: poll for updates and sweep expired access",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger := newLogger(cfg.LogLevel)
		slog.SetDefault(logger)
		logger.Info("starting doorman", "version", Version, "data_dir", cfg.DataDir)

		store := config.NewStore(cfg, logger)
		workspace, err := wiring.NewWorkspace(cfg.DataDir, logger)
		if err != nil {
			return err
		}

		client := telegram.NewClient(cfg.BotToken)
		api := telegram.NewResilient(client)

		// Everything presentation-related is read through the store so a
		// config reload reaches sweeps and join notifications, not just
		// the bot's own replies.
		transport := telegram.NewTransport(api, cfg.ChannelID, func() []int64 {
			return store.Current().AdminIDs
		}, logger)

		accessSvc := application.NewAccessService(workspace.Grants, workspace.Allowlist, transport, logger)
		joinSvc := application.NewJoinService(accessSvc, transport, transport, func() application.Texts {
			return store.Current().Messages
		}, logger)
		sweeper := application.NewSweepService(workspace.Grants, workspace.Allowlist, transport, transport,
			func() application.SweepConfig {
				live := store.Current()
				return application.SweepConfig{
					WarningThreshold: live.WarningThreshold(),
					Interval:         cfg.CheckInterval.Std(),
					Contact:          live.Contact,
					Texts:            live.Messages,
				}
			}, logger)

		bot := telegram.NewBot(api, store, accessSvc, workspace.Roster, joinSvc, logger)
		poller := telegram.NewPoller(client, bot, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		me, err := client.GetMe(ctx)
		if err != nil {
			return fmt.Errorf("failed to reach the Bot API, check bot_token: %w", err)
		}
		logger.Info("authorized", "bot", me.Username)

		// Long polling and webhooks are mutually exclusive on the API side.
		if err := client.DeleteWebhook(ctx); err != nil {
			return fmt.Errorf("failed to clear webhook before polling: %w", err)
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweeper.Run(ctx)
		}()

		watcher, err := watch.NewConfigWatcher(configPath, reloadDebounce, func() {
			fresh, err := config.Load(configPath)
			if err != nil {
				logger.Warn("config reload skipped, file is invalid", "error", err)
				return
			}
			store.ApplyReload(fresh)
		})
		if err != nil {
			logger.Warn("config hot-reload disabled", "error", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("config watcher stopped", "error", err)
				}
			}()
		}

		err = poller.Run(ctx)
		wg.Wait()
		logger.Info("doorman stopped")

		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func init() {
	RootCmd.AddCommand(runCmd)
}
