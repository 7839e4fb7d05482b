package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/jobboard/internal/client"
	"github.com/joseph-ayodele/jobboard/internal/common"
	"github.com/joseph-ayodele/jobboard/internal/export"
	"github.com/joseph-ayodele/jobboard/internal/health"
	"github.com/joseph-ayodele/jobboard/internal/session"
	"github.com/joseph-ayodele/jobboard/internal/web"
)

const healthInterval = 15 * time.Second

func main() {
	_ = godotenv.Load()

	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("jobboard stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped.")
}

// run serves until ctx is cancelled. Every resource it opens is released
// before it returns.
func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	if !cfg.Server.TemplateDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := session.Open(ctx, cfg.Session, logger)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("failed to close session store", "error", err)
		}
	}()

	api := client.New(client.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
		OnSessionExpired: func(ctx context.Context) {
			logger.Info("session expired", "session_id", common.SessionIDFromContext(ctx))
		},
	}, nil)

	srv, err := web.NewServer(web.Config{
		CookieName:         cfg.Session.CookieName,
		CookieSecure:       cfg.Session.CookieSecure,
		CookieMaxAge:       cfg.Session.CookieMaxAge,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}, api, backend, export.NewService(logger), logger)
	if err != nil {
		return fmt.Errorf("build web server: %w", err)
	}

	if addr := cfg.Server.HealthGRPCAddr; addr != "" {
		hs := health.NewServer(logger)
		if err := hs.ListenAndServe(addr); err != nil {
			return fmt.Errorf("health listener on %s: %w", addr, err)
		}
		defer hs.Stop()
		if p, ok := backend.(session.Pinger); ok {
			go hs.Watch(ctx, healthInterval, func(ctx context.Context) error {
				return p.HealthCheck(ctx, cfg.Session.DialTimeout)
			})
		}
	}

	logger.Info("jobboard starting", "api", cfg.API.BaseURL, "addr", cfg.Server.HTTPAddr)
	return srv.Run(ctx, cfg.Server.HTTPAddr)
}
