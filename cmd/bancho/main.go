package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/osuAkatsuki/bancho-core/internal/account"
	"github.com/osuAkatsuki/bancho-core/internal/api"
	"github.com/osuAkatsuki/bancho-core/internal/config"
	"github.com/osuAkatsuki/bancho-core/internal/crypto"
	"github.com/osuAkatsuki/bancho-core/internal/db"
	"github.com/osuAkatsuki/bancho-core/internal/geoip"
	"github.com/osuAkatsuki/bancho-core/internal/kv"
	"github.com/osuAkatsuki/bancho-core/internal/login"
	"github.com/osuAkatsuki/bancho-core/internal/session"
	"github.com/osuAkatsuki/bancho-core/internal/webhook"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Configure slog
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("bancho starting", "addr", cfg.Addr)

	// Connect to database
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	// Run migrations
	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// Connect to redis
	rdb, err := kv.NewClient(ctx, cfg.Redis.Addr(), "", 0)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer rdb.Close()
	slog.Info("redis connected")

	// Open the geolocation database
	resolver, err := geoip.Open(cfg.GeolocationDBPath)
	if err != nil {
		return fmt.Errorf("opening geolocation database: %w", err)
	}
	defer resolver.Close()

	// Wire persistence
	users := db.NewUserRepository(database.Pool())
	stats := db.NewStatsRepository(database.Pool())
	tokens := db.NewTokenRepository(database.Pool())
	streams := db.NewStreamRepository(database.Pool())
	channels := db.NewChannelRepository(database.Pool())
	rapLogs := db.NewRapLogRepository(database.Pool())

	leaderboard := kv.NewLeaderboard(rdb)
	anticheat := webhook.NewClient(cfg.GeneralAnticheatWebhook, cfg.ConfidentialAnticheatWebhook)
	accounts := account.NewService(users, leaderboard, kv.NewBanPublisher(rdb), rapLogs, anticheat)

	registry := session.NewRegistry(tokens, streams, channels, users, stats, leaderboard)

	// Reset live session state, then bootstrap the bot and channels
	if err := database.ResetLiveState(ctx); err != nil {
		return err
	}
	if err := registry.EnsureBotToken(ctx); err != nil {
		return fmt.Errorf("creating bot session: %w", err)
	}
	if err := registry.SeedChannels(ctx); err != nil {
		return fmt.Errorf("seeding channels: %w", err)
	}
	slog.Info("live state bootstrapped")

	// Create the login controller and HTTP server
	controller := login.NewController(
		users,
		registry,
		crypto.NewVerifier(kv.NewBcryptCache(rdb)),
		resolver,
		kv.NewLocker(rdb),
		accounts,
		login.Config{
			LoginNotification: cfg.LoginNotification,
			Maintenance:       cfg.Maintenance,
			MenuIconURL:       cfg.MenuIconURL,
			MenuOnClickURL:    cfg.MenuOnClickURL,
		},
	)
	server := api.NewServer(registry, controller)

	// Serve until the context is cancelled
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("serving", "addr", cfg.Addr)
		if err := server.Run(gctx, cfg.Addr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
