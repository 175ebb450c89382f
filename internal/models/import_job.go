// -----------------------------------------------------------------------
// Import Job - Snapshot of the remote subscriber import job
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"strings"
)

// JobStatus is the remote import status as reported by the server.
type JobStatus string

const (
	JobStatusNone      JobStatus = "none"
	JobStatusImporting JobStatus = "importing"
	JobStatusStopping  JobStatus = "stopping"
	JobStatusFinished  JobStatus = "finished"
	JobStatusFailed    JobStatus = "failed"
)

// ParseJobStatus normalises a raw status string. Unknown values are rejected
// so that a malformed response never reaches the job store.
func ParseJobStatus(raw string) (JobStatus, error) {
	status := JobStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case JobStatusNone, JobStatusImporting, JobStatusStopping, JobStatusFinished, JobStatusFailed:
		return status, nil
	case "":
		return JobStatusNone, nil
	}
	return "", fmt.Errorf("unknown import status %q", raw)
}

// IsTerminal returns true for finished and failed jobs. No further ticks are
// needed once a job is terminal.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusFinished || s == JobStatusFailed
}

// IsActive returns true while the remote side is still working on the job.
func (s JobStatus) IsActive() bool {
	return s == JobStatusImporting || s == JobStatusStopping
}

// JobState is the canonical snapshot of a single import job.
// Name, Imported and Total are ignored when Status is none.
type JobState struct {
	Status   JobStatus `json:"status"`
	Name     string    `json:"name"`
	Imported int       `json:"imported"`
	Total    int       `json:"total"`
}

// IdleJobState returns the state used when no job is active.
func IdleJobState() JobState {
	return JobState{Status: JobStatusNone}
}

// IsIdle returns true when no job is active.
func (s JobState) IsIdle() bool {
	return s.Status == JobStatusNone || s.Status == ""
}

// Progress returns the completion percentage in [0, 100].
// Finished jobs always report 100; otherwise the ratio is floored.
func (s JobState) Progress() int {
	if s.Status == JobStatusFinished {
		return 100
	}
	if s.Total <= 0 || s.Imported <= 0 {
		return 0
	}
	pct := s.Imported * 100 / s.Total
	if pct > 100 {
		return 100
	}
	return pct
}

// String renders a short human readable summary, used in logs and the CLI.
func (s JobState) String() string {
	if s.IsIdle() {
		return "idle"
	}
	return fmt.Sprintf("%s %s: %d/%d (%d%%)", s.Name, s.Status, s.Imported, s.Total, s.Progress())
}
