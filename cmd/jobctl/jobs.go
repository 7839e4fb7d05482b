package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/jobboard/internal/entity"
	"github.com/joseph-ayodele/jobboard/internal/views"
)

func (a *app) jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List and manage job postings",
	}
	cmd.AddCommand(a.jobsListCmd(), a.jobsDeleteCmd())
	return cmd
}

func (a *app) jobsListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := a.api.Jobs().List(cmd.Context())
			if err != nil {
				return explain(err, "failed to load jobs")
			}
			visible := views.FilterJobs(all, search)
			out := cmd.OutOrStdout()
			if len(visible) == 0 {
				fmt.Fprintln(out, "No jobs match your search.")
				return nil
			}
			renderJobs(out, visible)
			fmt.Fprintf(out, "%d %s found\n", len(visible), plural(len(visible), "job", "jobs"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by title, company or location")
	return cmd
}

func renderJobs(w io.Writer, jobs []entity.Job) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Title", "Company", "Location", "Type"})
	table.SetAutoWrapText(false)
	for _, j := range jobs {
		table.Append([]string{strconv.FormatInt(j.ID, 10), j.Title, j.Company, j.Location, j.JobType})
	}
	table.Render()
}

func (a *app) jobsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a job posting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.recruiter(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete job %d? This cannot be undone. [y/N]: ", id)) {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
			if err := a.api.Jobs().Delete(cmd.Context(), id); err != nil {
				return explain(err, "failed to delete job")
			}
			fmt.Fprintln(out, "Job deleted successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks on in and accepts only y or yes.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
