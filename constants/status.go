package constants

import "strings"

// ApplicationStatus is the canonical review status of an application.
type ApplicationStatus string

// Stable values (the API stores these exact strings).
const (
	StatusNew         ApplicationStatus = "new"
	StatusReviewed    ApplicationStatus = "reviewed"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusRejected    ApplicationStatus = "rejected"
)

// StatusAll is the dashboard filter value that matches every status.
const StatusAll = "all"

var allStatuses = []ApplicationStatus{
	StatusNew,
	StatusReviewed,
	StatusShortlisted,
	StatusRejected,
}

// Statuses returns the canonical statuses in display order.
func Statuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Label is the human readable form used in badges and filter buttons.
func (s ApplicationStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Valid reports whether s is one of the canonical statuses.
func (s ApplicationStatus) Valid() bool {
	for _, st := range allStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// CanonicalStatus maps both the lowercase values and the legacy capitalized
// variant (Pending/Reviewed/Shortlisted/Rejected) onto the canonical set.
func CanonicalStatus(input string) (ApplicationStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "pending" {
		return StatusNew, true
	}
	for _, st := range allStatuses {
		if normalized == string(st) {
			return st, true
		}
	}
	return ApplicationStatus(input), false
}
