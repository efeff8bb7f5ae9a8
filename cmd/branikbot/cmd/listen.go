package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"branikbot/internal/bot"
	"branikbot/internal/metrics"
	"branikbot/internal/price"
	"branikbot/internal/reddit"
	"branikbot/internal/storage"
)

func newListenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Poll the subreddit and reply to money mentions",
		Long: `Polls the configured subreddit for new comments, extracts money
mentions and replies with their value in 2L Branik. Replies are only posted
when BOT_POST_RESPONSE is set; otherwise they are logged (and stored when
BOT_SAVE_RESPONSE is set).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			logger := a.logger

			if err := cfg.RequireReddit(); err != nil {
				return err
			}

			db, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			client, err := reddit.NewClient(cfg)
			if err != nil {
				return err
			}
			comments := reddit.NewCommentReader(client, db, cfg.RedditSubreddit, cfg.RedditFetchLimit)
			prices := price.NewReader(cfg, logger)
			svc := bot.NewService(cfg, db, comments, client, prices, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.MetricsAddr != "" {
				go func() {
					if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
						logger.Error("metrics server", zap.Error(err))
					}
				}()
			}

			logger.Info("listening",
				zap.String("subreddit", cfg.RedditSubreddit),
				zap.Duration("interval", cfg.BotInterval),
				zap.Bool("post", cfg.BotPostResponse),
			)
			if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("listener stopped")
			return nil
		},
	}
}
