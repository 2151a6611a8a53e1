package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"communitybridge/common/logger"
	"communitybridge/common/otel"
	"communitybridge/core/config"
	"communitybridge/internal/bot"
	"communitybridge/internal/discord"
	"communitybridge/internal/notion"
	"communitybridge/internal/reddit"
	"communitybridge/internal/service"
	"communitybridge/internal/session"
	"communitybridge/internal/store"
	"communitybridge/internal/telegram"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)
	logger.Setup(cfg)

	slog.InfoContext(ctx, "community bridge starting",
		"env", cfg.Env,
		"subreddit", cfg.Reddit.Subreddit,
		"discord_enabled", cfg.Discord.Enabled())

	if cfg.OTel.Enabled() {
		telemetry, err := otel.Setup(ctx, cfg.OTel)
		if err != nil {
			slog.ErrorContext(ctx, "failed to set up telemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(shutdownCtx); err != nil {
				slog.ErrorContext(ctx, "telemetry shutdown error", "error", err)
			}
		}()
	}

	// Collaborator clients.
	notionClient := notion.NewClient(cfg.Notion.Token)
	redditClient := reddit.NewClient(cfg.Reddit.ClientID, cfg.Reddit.ClientSecret, cfg.Reddit.UserAgent)
	telegramClient := telegram.NewClient(cfg.Telegram.BotToken)

	stores := store.NewStores(notionClient, cfg.Notion)

	// Services.
	ingestor := service.NewIngestor(redditClient, stores.IssueReports, stores.ForumComments, service.IngestorConfig{
		Subreddit:    cfg.Reddit.Subreddit,
		IgnoredUsers: cfg.IgnoredUsers,
		Moderators:   cfg.Moderators,
	})
	liveFeed := service.NewLiveFeed(redditClient, telegramClient, stores.IssueReports, service.LiveFeedConfig{
		Subreddit:    cfg.Reddit.Subreddit,
		ChatID:       cfg.Telegram.ChatID,
		IgnoredUsers: cfg.IgnoredUsers,
		Moderators:   cfg.Moderators,
	})
	sweeper := service.NewSweeper(stores.IssueReports)
	feedback := service.NewFeedback(redditClient, stores.Reactions, cfg.Reddit.Subreddit)
	scheduler := service.NewScheduler(service.NewReporter(stores, telegramClient, cfg.Telegram.ChatID))

	// Operator chat commands.
	sessions := session.NewManager()
	dispatcher := telegram.NewDispatcher(telegramClient)
	bot.New(telegramClient, stores.IssueReports, stores.VideoComments, sessions, feedback).
		Register(dispatcher)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, runCtx := errgroup.WithContext(runCtx)
	g.Go(func() error { return ingestor.Run(runCtx) })
	g.Go(func() error { return liveFeed.Run(runCtx) })
	g.Go(func() error { return sweeper.Run(runCtx) })
	g.Go(func() error { return scheduler.Run(runCtx) })
	g.Go(func() error { return dispatcher.Run(runCtx) })

	if cfg.Discord.Enabled() {
		relay := service.NewChatRelay(telegramClient, discord.NewClient(cfg.Discord.BotToken),
			stores.IssueReports, service.ChatRelayConfig{
				ChatID:        cfg.Telegram.ChatID,
				ModeratorTags: cfg.ChatModerators,
			})
		gateway := discord.NewGateway(cfg.Discord.BotToken, relay.HandleMessage)
		g.Go(func() error { return gateway.Run(runCtx) })
	}

	slog.InfoContext(ctx, "all loops running")

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.InfoContext(ctx, "shutting down...")
		cancel()
	case <-runCtx.Done():
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "bridge stopped with error", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "shutdown complete")
}

const banner = `
██████╗ ██████╗ ██╗██████╗  ██████╗ ███████╗
██╔══██╗██╔══██╗██║██╔══██╗██╔════╝ ██╔════╝
██████╔╝██████╔╝██║██║  ██║██║  ███╗█████╗
██╔══██╗██╔══██╗██║██║  ██║██║   ██║██╔══╝
██████╔╝██║  ██║██║██████╔╝╚██████╔╝███████╗
╚═════╝ ╚═╝  ╚═╝╚═╝╚═════╝  ╚═════╝ ╚══════╝
`
