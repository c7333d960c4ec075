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

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/leads/internal/archive"
	"github.com/JonMunkholm/leads/internal/config"
	"github.com/JonMunkholm/leads/internal/core"
	"github.com/JonMunkholm/leads/internal/identity"
	"github.com/JonMunkholm/leads/internal/logging"
	"github.com/JonMunkholm/leads/internal/metrics"
	"github.com/JonMunkholm/leads/internal/ratelimit"
	"github.com/JonMunkholm/leads/internal/store/postgres"
	"github.com/JonMunkholm/leads/internal/web"
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

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, cfg.Database.URL, postgres.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	if cfg.Database.RunMigrations {
		if err := postgres.Migrate(ctx, pool); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	}

	store := postgres.New(pool)
	m := metrics.New()

	// config.Load rejects a malformed id when demo login is enabled.
	demoID, _ := uuid.Parse(cfg.Auth.DemoUserID)
	provider := identity.NewJWTProvider(store, identity.JWTConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.SessionTTL,
		Demo: identity.DemoAgent{
			Enabled: cfg.Auth.DemoEnabled,
			UserID:  demoID,
			Email:   cfg.Auth.DemoEmail,
		},
	})

	service := core.NewService(store, core.Options{
		EnforceOwnership: cfg.Auth.EnforceOwnership,
		MaxImportRows:    cfg.Import.MaxRows,
		ImportTimeout:    cfg.Import.Timeout,
		Recorder:         m,
		Logger:           logger,
		Limiter:          core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
	})

	deps := web.Deps{Service: service, Identity: provider}
	if cfg.Metrics.Enabled {
		deps.Metrics = m
	}

	if cfg.Export.ArchiveEnabled() {
		archiver, err := archive.NewS3Archiver(ctx, archive.Config{
			Bucket:     cfg.Export.Bucket,
			Region:     cfg.Export.Region,
			Endpoint:   cfg.Export.Endpoint,
			AccessKey:  cfg.Export.AccessKey,
			SecretKey:  cfg.Export.SecretKey,
			Prefix:     cfg.Export.Prefix,
			PresignTTL: cfg.Export.PresignTTL,
			PathStyle:  cfg.Export.PathStyle,
		})
		if err != nil {
			slog.Error("failed to configure export archive", "error", err)
			os.Exit(1)
		}
		deps.Archiver = archiver
		slog.Info("export archive enabled", "bucket", cfg.Export.Bucket)
	}

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	if cfg.Rate.Enabled {
		limiter := ratelimit.NewFixedWindow(cfg.Rate.Requests, cfg.Rate.Window)
		go limiter.Run(jobCtx, cfg.Rate.Window)
		deps.Limiter = limiter
	}

	server := web.NewServer(web.Config{
		RequestTimeout: cfg.Server.RequestTimeout,
		ImportTimeout:  cfg.Import.Timeout + cfg.Import.MaxWaitTime,
		MaxImportBytes: cfg.Import.MaxFileSize,
		CookieName:     cfg.Auth.CookieName,
		CookieSecure:   cfg.Auth.CookieSecure,
		TrustedProxies: cfg.Security.TrustedProxies,
		MetricsPath:    cfg.Metrics.Path,
	}, deps)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := service.Limiter().Status(); st.Active > 0 {
			slog.Info("waiting for imports to complete", "active", st.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	err = server.Start(cfg.Server.Addr(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
