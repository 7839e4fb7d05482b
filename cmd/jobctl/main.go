// Command jobctl is a terminal client for the job board API. It shares the
// web front-end's API client and keeps its token pair in a local file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/jobboard/internal/client"
	"github.com/joseph-ayodele/jobboard/internal/common"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(common.LoadConfig(), logger)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "jobctl:", err)
		if errors.Is(err, client.ErrSessionExpired) || errors.Is(err, errNotLoggedIn) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	if os.Getenv("JOBCTL_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
