// Package views holds the pure derivations behind each page: list filters,
// status counts, form validation and per-view state. Nothing here does I/O.
package views

import (
	"strings"

	"github.com/joseph-ayodele/jobboard/constants"
	"github.com/joseph-ayodele/jobboard/internal/entity"
)

func containsFold(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

// normalizeQuery lowercases q. Whitespace is part of the needle, so " "
// matches only fields that contain a space.
func normalizeQuery(q string) string {
	return strings.ToLower(q)
}

// FilterJobs returns the jobs whose title, company or location contains query,
// case-insensitively, in their original order. An empty query returns all.
func FilterJobs(all []entity.Job, query string) []entity.Job {
	q := normalizeQuery(query)
	if q == "" {
		return all
	}
	out := make([]entity.Job, 0, len(all))
	for _, j := range all {
		if containsFold(j.Title, q) || containsFold(j.Company, q) || containsFold(j.Location, q) {
			out = append(out, j)
		}
	}
	return out
}

// FilterApplications combines a free-text search over applicant name, email
// and job title with a status equality filter. status "" or "all" matches
// every status.
func FilterApplications(all []entity.Application, query, status string) []entity.Application {
	q := normalizeQuery(query)
	want, byStatus := statusFilter(status)

	out := make([]entity.Application, 0, len(all))
	for _, a := range all {
		if q != "" && !containsFold(a.FullName, q) && !containsFold(a.Email, q) && !containsFold(a.JobTitle(), q) {
			continue
		}
		if byStatus && a.Status != want {
			continue
		}
		out = append(out, a)
	}
	return out
}

func statusFilter(status string) (constants.ApplicationStatus, bool) {
	s := strings.TrimSpace(status)
	if s == "" || strings.EqualFold(s, constants.StatusAll) {
		return "", false
	}
	if st, ok := constants.CanonicalStatus(s); ok {
		return st, true
	}
	// unknown statuses match nothing rather than everything
	return constants.ApplicationStatus(s), true
}

// StatusCount is one clickable bucket on the dashboard.
type StatusCount struct {
	Status string
	Label  string
	Count  int
	Active bool
}

// CountByStatus returns the "all" bucket followed by one bucket per
// canonical status. active marks the currently selected filter.
func CountByStatus(all []entity.Application, active string) []StatusCount {
	counts := make(map[constants.ApplicationStatus]int, 4)
	for _, a := range all {
		counts[a.Status]++
	}
	want, byStatus := statusFilter(active)

	out := make([]StatusCount, 0, 5)
	out = append(out, StatusCount{Status: constants.StatusAll, Label: "Total", Count: len(all), Active: !byStatus})
	for _, st := range constants.Statuses() {
		out = append(out, StatusCount{
			Status: string(st),
			Label:  st.Label(),
			Count:  counts[st],
			Active: byStatus && want == st,
		})
	}
	return out
}

// FindApplication scans all for id.
func FindApplication(all []entity.Application, id int64) (entity.Application, bool) {
	for _, a := range all {
		if a.ID == id {
			return a, true
		}
	}
	return entity.Application{}, false
}
