// Command voxmate is the voice-controlled chess server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voxmate/voxmate/internal/app"
	"github.com/voxmate/voxmate/internal/archive"
	"github.com/voxmate/voxmate/internal/config"
	"github.com/voxmate/voxmate/internal/engine/uci"
	"github.com/voxmate/voxmate/internal/explorer"
	"github.com/voxmate/voxmate/internal/health"
	"github.com/voxmate/voxmate/internal/observe"
	"github.com/voxmate/voxmate/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "voxmate: config file %q not found, copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "voxmate: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	slog.Info("voxmate starting",
		"config", *configPath,
		"listen_addr", addr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	shutdownObserve, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise observability", "err", err)
		return 1
	}
	defer func() {
		if err := shutdownObserve(context.Background()); err != nil {
			slog.Warn("observability shutdown error", "err", err)
		}
	}()

	var serverOpts []server.Option
	serverOpts = append(serverOpts, server.WithLogger(logger))

	// ── Analysis engine (optional) ────────────────────────────────────────────
	if cfg.Engine.Command != "" {
		engineOpts := []uci.Option{
			uci.WithLogger(logger),
			uci.WithThreads(cfg.Engine.Threads),
		}
		for name, value := range cfg.Engine.Options {
			engineOpts = append(engineOpts, uci.WithOption(name, value))
		}
		eng, err := uci.New(ctx, cfg.Engine.Command, engineOpts...)
		if err != nil {
			slog.Error("failed to start analysis engine", "command", cfg.Engine.Command, "err", err)
			return 1
		}
		defer eng.Close()
		serverOpts = append(serverOpts,
			server.WithAnalyzer(eng),
			server.WithCheckers(health.PingChecker("engine", eng)),
		)
		slog.Info("analysis engine started", "command", cfg.Engine.Command)
	} else {
		slog.Warn("no engine configured, analysis and engine autoplay are disabled")
	}

	// ── Master-games explorer ─────────────────────────────────────────────────
	explorerOpts := []explorer.Option{explorer.WithLogger(logger)}
	if cfg.Explorer.BaseURL != "" {
		explorerOpts = append(explorerOpts, explorer.WithBaseURL(cfg.Explorer.BaseURL))
	}
	if cfg.Explorer.Timeout > 0 {
		explorerOpts = append(explorerOpts, explorer.WithHTTPClient(&http.Client{Timeout: cfg.Explorer.Timeout}))
	}
	if cc := cfg.Explorer.Cache; cc != nil && cc.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cc.RedisURL)
		if err != nil {
			slog.Error("invalid redis URL", "err", err)
			return 1
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		explorerOpts = append(explorerOpts, explorer.WithCache(explorer.NewRedisCache(rdb, cc.TTL, logger)))
		serverOpts = append(serverOpts, server.WithCheckers(health.FuncChecker("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})))
		slog.Info("explorer cache enabled", "ttl", cc.TTL)
	}
	serverOpts = append(serverOpts, server.WithStats(explorer.NewClient(explorerOpts...)))

	// ── Game archive (optional) ───────────────────────────────────────────────
	if dsn := cfg.Archive.PostgresDSN; dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			slog.Error("failed to connect to archive database", "err", err)
			return 1
		}
		defer pool.Close()

		store := archive.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			slog.Error("archive migration failed", "err", err)
			return 1
		}
		serverOpts = append(serverOpts,
			server.WithArchive(store),
			server.WithCheckers(health.PingChecker("archive", pool)),
		)
		slog.Info("game archive enabled")
	} else {
		slog.Warn("no archive database configured, finished games are not persisted")
	}

	// ── Session defaults ──────────────────────────────────────────────────────
	serverOpts = append(serverOpts, server.WithGameOptions(
		app.WithSearch(cfg.Engine.Depth, cfg.Engine.MultiPV),
		app.WithDefaultStrength(cfg.Autoplay.Strength()),
		app.WithAnnounceMuted(cfg.Voice.MuteAnnouncements),
	))

	// ── Serve ─────────────────────────────────────────────────────────────────
	slog.Info("server ready, press Ctrl+C to shut down")
	srv := server.New(serverOpts...)
	if err := srv.Serve(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}
