package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/jobboard/internal/client"
	"github.com/joseph-ayodele/jobboard/internal/common"
	"github.com/joseph-ayodele/jobboard/internal/export"
	"github.com/joseph-ayodele/jobboard/internal/session"
)

var errNotLoggedIn = errors.New("not logged in, run jobctl login")

// app holds what every subcommand needs. api is built once flags are parsed.
type app struct {
	baseURL   string
	tokenFile string
	cfg       *common.Config
	logger    *slog.Logger

	store *session.FileStore
	api   *client.Client
}

func newRootCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	a := &app{cfg: cfg, logger: logger}

	root := &cobra.Command{
		Use:           "jobctl",
		Short:         "Browse jobs and review applications from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.store = session.NewFileStore(a.tokenFile)
			a.api = client.New(client.Options{
				BaseURL: a.baseURL,
				Timeout: a.cfg.API.Timeout,
				Logger:  a.logger,
			}, a.store)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.baseURL, "api", cfg.API.BaseURL, "job board API base URL")
	root.PersistentFlags().StringVar(&a.tokenFile, "token-file", cfg.CLI.TokenFile, "where the session tokens are kept")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.jobsCmd(),
		a.applicationsCmd(),
	)
	return root
}

// recruiter guards commands that need a signed-in user.
func (a *app) recruiter(cmd *cobra.Command) error {
	if !session.Authenticated(cmd.Context(), a.store) {
		return errNotLoggedIn
	}
	return nil
}

// explain turns client errors into something a terminal user can act on.
func explain(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, client.ErrSessionExpired) {
		return fmt.Errorf("%w: session expired, run jobctl login", client.ErrSessionExpired)
	}
	return fmt.Errorf("%s: %s", action, client.UserMessage(err, err.Error()))
}

func (a *app) exporter() *export.Service {
	return export.NewService(a.logger)
}
