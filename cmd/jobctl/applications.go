package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/jobboard/constants"
	"github.com/joseph-ayodele/jobboard/internal/entity"
	"github.com/joseph-ayodele/jobboard/internal/export"
	"github.com/joseph-ayodele/jobboard/internal/views"
)

func (a *app) applicationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Review submitted applications",
	}
	cmd.AddCommand(a.applicationsListCmd(), a.applicationsStatusCmd(), a.applicationsExportCmd())
	return cmd
}

type appFilter struct {
	search string
	status string
}

func (f *appFilter) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "filter by name, email or job title")
	cmd.Flags().StringVar(&f.status, "status", constants.StatusAll, "filter by status (all, new, reviewed, shortlisted, rejected)")
}

func (a *app) applicationsListCmd() *cobra.Command {
	var filter appFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications with per-status counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.recruiter(cmd); err != nil {
				return err
			}
			all, err := a.api.Applications().List(cmd.Context())
			if err != nil {
				return explain(err, "failed to load applications")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, countsLine(views.CountByStatus(all, filter.status)))

			visible := views.FilterApplications(all, filter.search, filter.status)
			if len(visible) == 0 {
				fmt.Fprintln(out, "No applications found.")
				return nil
			}
			renderApplications(out, visible)
			fmt.Fprintf(out, "Showing %d of %d\n", len(visible), len(all))
			return nil
		},
	}
	filter.bind(cmd)
	return cmd
}

func countsLine(counts []views.StatusCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		label := fmt.Sprintf("%s %d", c.Label, c.Count)
		if c.Active {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func renderApplications(w io.Writer, apps []entity.Application) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Email", "Job", "Status", "Submitted"})
	table.SetAutoWrapText(false)
	for _, app := range apps {
		submitted := ""
		if app.CreatedAt != nil {
			submitted = app.CreatedAt.Format("2006-01-02")
		}
		table.Append([]string{
			strconv.FormatInt(app.ID, 10),
			app.FullName,
			app.Email,
			app.JobTitle(),
			app.Status.Label(),
			submitted,
		})
	}
	table.Render()
}

func (a *app) applicationsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Change the review status of an application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.recruiter(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, ok := constants.CanonicalStatus(args[1])
			if !ok {
				return fmt.Errorf("invalid status %q", args[1])
			}
			if err := a.api.Applications().UpdateStatus(cmd.Context(), id, status); err != nil {
				return explain(err, "failed to update status")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Application %d status changed to %s\n", id, status.Label())
			return nil
		},
	}
}

func (a *app) applicationsExportCmd() *cobra.Command {
	var (
		filter appFilter
		path   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered applications to an XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.recruiter(cmd); err != nil {
				return err
			}
			all, err := a.api.Applications().List(cmd.Context())
			if err != nil {
				return explain(err, "failed to load applications")
			}
			visible := views.FilterApplications(all, filter.search, filter.status)

			raw, err := a.exporter().ApplicationsXLSX(cmd.Context(), visible)
			if err != nil {
				return fmt.Errorf("build spreadsheet: %w", err)
			}
			if path == "" {
				path = export.Filename(time.Now())
			}
			if err := os.WriteFile(path, raw, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d %s to %s\n", len(visible), plural(len(visible), "application", "applications"), path)
			return nil
		},
	}
	filter.bind(cmd)
	cmd.Flags().StringVarP(&path, "out", "o", "", "output file (default applications-<timestamp>.xlsx)")
	return cmd
}
