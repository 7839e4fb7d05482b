package entity

import (
	"encoding/json"
	"io"
	"time"

	"github.com/joseph-ayodele/jobboard/constants"
)

// Application mirrors an application record returned by the API.
type Application struct {
	ID          int64                       `json:"id"`
	FullName    string                      `json:"full_name"`
	Email       string                      `json:"email"`
	Phone       string                      `json:"phone,omitempty"`
	Resume      string                      `json:"resume"`
	CoverLetter string                      `json:"cover_letter,omitempty"`
	JobID       int64                       `json:"job_id"`
	Job         *Job                        `json:"job,omitempty"`
	Status      constants.ApplicationStatus `json:"status"`
	CreatedAt   *time.Time                  `json:"created_at,omitempty"`
}

// UnmarshalJSON accepts both payload shapes the API has served: `name` and
// `resume_url` as aliases, and capitalized statuses such as "Pending".
func (a *Application) UnmarshalJSON(data []byte) error {
	type plain Application
	var aux struct {
		plain
		Name      string          `json:"name"`
		ResumeURL string          `json:"resume_url"`
		Status    string          `json:"status"`
		CreatedAt json.RawMessage `json:"created_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Application(aux.plain)
	a.CreatedAt = parseTimestamp(aux.CreatedAt)
	if a.FullName == "" {
		a.FullName = aux.Name
	}
	if a.Resume == "" {
		a.Resume = aux.ResumeURL
	}
	a.Status, _ = constants.CanonicalStatus(aux.Status)
	if a.JobID == 0 && a.Job != nil {
		a.JobID = a.Job.ID
	}
	return nil
}

// JobTitle returns the denormalized job title, or "" when absent.
func (a Application) JobTitle() string {
	if a.Job == nil {
		return ""
	}
	return a.Job.Title
}

// ResumeFile is an uploaded resume attached to a submission.
type ResumeFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ApplicationSubmission is what an applicant sends. Exactly one of ResumeURL
// or ResumeFile is expected; a file takes precedence.
type ApplicationSubmission struct {
	JobID       int64
	FullName    string
	Email       string
	Phone       string
	CoverLetter string
	ResumeURL   string
	ResumeFile  *ResumeFile
}
