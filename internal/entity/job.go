package entity

import (
	"encoding/json"
	"time"
)

// Job mirrors a job posting returned by the API.
type Job struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements,omitempty"`
	Salary       string     `json:"salary,omitempty"`
	JobType      string     `json:"job_type,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// UnmarshalJSON tolerates created_at values that are not RFC 3339.
func (j *Job) UnmarshalJSON(data []byte) error {
	type plain Job
	var aux struct {
		plain
		CreatedAt json.RawMessage `json:"created_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*j = Job(aux.plain)
	j.CreatedAt = parseTimestamp(aux.CreatedAt)
	return nil
}

// JobInput is the create/update payload for a job posting.
type JobInput struct {
	Title        string `json:"title"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	Requirements string `json:"requirements,omitempty"`
	Salary       string `json:"salary,omitempty"`
	JobType      string `json:"job_type,omitempty"`
}

// Input returns the editable fields of j, used to prefill edit forms.
func (j Job) Input() JobInput {
	return JobInput{
		Title:        j.Title,
		Company:      j.Company,
		Location:     j.Location,
		Description:  j.Description,
		Requirements: j.Requirements,
		Salary:       j.Salary,
		JobType:      j.JobType,
	}
}
