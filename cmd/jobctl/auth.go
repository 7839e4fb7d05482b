package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/jobboard/internal/session"
	"github.com/joseph-ayodele/jobboard/internal/views"
)

func (a *app) loginCmd() *cobra.Command {
	var form views.LoginForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a recruiter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if errs := form.Validate(); !errs.Valid() {
				for _, field := range []string{"username", "password"} {
					if msg, ok := errs[field]; ok {
						return fmt.Errorf("%s", msg)
					}
				}
			}
			username := strings.TrimSpace(form.Username)
			if _, err := a.api.Auth().Login(cmd.Context(), username, form.Password); err != nil {
				return explain(err, "login failed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Username, "username", "u", "", "recruiter username")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "recruiter password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.api.Auth().Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			access, ok := a.store.Access(cmd.Context())
			if !ok {
				return errNotLoggedIn
			}
			out := cmd.OutOrStdout()
			id, ok := session.Claims(access)
			if !ok {
				fmt.Fprintln(out, "Logged in (token details unavailable)")
				return nil
			}
			name := id.Username
			if name == "" {
				name = "user " + id.UserID
			}
			fmt.Fprintf(out, "Logged in as %s\n", name)
			if id.ExpiresAt != nil {
				fmt.Fprintf(out, "Access token expires %s\n", id.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}
