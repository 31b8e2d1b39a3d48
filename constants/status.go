package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"    // accepted, waiting for a worker
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusCompleted JobStatus = "COMPLETED" // terminal success (question_count may be zero)
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure with error_message
	JobStatusCancelled JobStatus = "CANCELLED" // job context cancelled before completion
)

// IsTerminal reports whether a job in this status will not change again.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}
