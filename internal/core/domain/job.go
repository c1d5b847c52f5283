package domain

import "time"

// JobStatus is the lifecycle state of a job posting.
type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobOpen, JobInProgress, JobCompleted:
		return true
	}
	return false
}

// Job is a posting created by a client. ClientID is always the identity that
// created it and is never taken from the request body.
type Job struct {
	ID          string
	ClientID    string
	Title       string
	Description string
	Budget      float64
	Skills      []string
	Status      JobStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClientSummary is the public slice of the owning client shown with a job.
type ClientSummary struct {
	Name  string
	Email string
}

// JobWithClient pairs a job with its owner's public summary.
type JobWithClient struct {
	Job
	Client ClientSummary
}
