package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/catalogimport/internal/config"
	"github.com/JonMunkholm/catalogimport/internal/core"
	_ "github.com/JonMunkholm/catalogimport/internal/core/categories" // Register all categories
	"github.com/JonMunkholm/catalogimport/internal/fxrate"
	"github.com/JonMunkholm/catalogimport/internal/logging"
	"github.com/JonMunkholm/catalogimport/internal/store"
	"github.com/JonMunkholm/catalogimport/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if cfg.Database.AutoMigrate {
		if err := store.EnsureSchema(ctx, pool); err != nil {
			slog.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	products := store.NewProducts(pool)
	profiles := store.NewPricingProfiles(pool)

	rates, closeRates, err := exchangeRates(ctx, cfg.Exchange)
	if err != nil {
		slog.Error("failed to set up exchange rates", "error", err)
		os.Exit(1)
	}
	defer closeRates()

	service := core.NewService(products, profiles, rates, core.Options{
		Workers:             cfg.Import.Workers,
		StrictPricing:       cfg.Import.StrictPricing,
		BatchTTL:            cfg.Import.BatchTTL,
		MaxConcurrent:       cfg.Import.MaxConcurrent,
		MaxWait:             cfg.Import.MaxWaitTime,
		DefaultGoldRate:     cfg.Pricing.GoldRatePerGram,
		DefaultMakingCharge: cfg.Pricing.MakingChargePerGram,
	})

	categories := service.Categories()
	for _, c := range categories {
		slog.Debug("category registered", "type", c.Type, "sku_prefix", c.SKUPrefix)
	}
	slog.Info("categories registered", "count", len(categories))

	server := web.NewServer(cfg, service, profiles, pool)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartBatchJanitor(jobCtx, cfg.Import.JanitorInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.ImportQueueStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// exchangeRates builds the INR to USD source: a fixed rate when
// configured, otherwise the HTTP provider behind an optional shared Redis
// cache, always fronted by the in-process cache.
func exchangeRates(ctx context.Context, cfg config.ExchangeConfig) (core.ExchangeRateSource, func(), error) {
	noop := func() {}

	if cfg.FixedRate.IsPositive() {
		slog.Info("using fixed exchange rate", "inr_usd", cfg.FixedRate.String())
		return fxrate.Fixed(cfg.FixedRate), noop, nil
	}

	var src fxrate.Source = fxrate.NewHTTPSource(fxrate.HTTPOptions{
		URL:       cfg.URL,
		Timeout:   cfg.Timeout,
		PerMinute: cfg.RequestsPerMin,
	})

	closeFn := noop
	if cfg.RedisURL != "" {
		client, err := fxrate.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		src = fxrate.NewRedisCache(client, cfg.RedisKey, cfg.CacheTTL, src)
		closeFn = func() {
			if err := client.Close(); err != nil {
				slog.Warn("redis close failed", "error", err)
			}
		}
		slog.Info("exchange rates shared through redis", "key", cfg.RedisKey)
	}

	return fxrate.NewCached(src, cfg.CacheTTL), closeFn, nil
}
