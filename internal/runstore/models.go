package runstore

import "time"

// Status represents the lifecycle of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
)

var allStatuses = []Status{
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusRejected,
}

// ParseStatus converts a string into a Status.
func ParseStatus(value string) (Status, bool) {
	for _, status := range allStatuses {
		if string(status) == value {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether the run has finished.
func (s Status) IsTerminal() bool {
	return s != StatusRunning
}

// Run is one analysis invocation.
type Run struct {
	ID             string     `json:"id"`
	VideoPath      string     `json:"video_path"`
	TranscriptPath string     `json:"transcript_path,omitempty"`
	OutputDir      string     `json:"output_dir,omitempty"`
	ManifestPath   string     `json:"manifest_path,omitempty"`
	Status         Status     `json:"status"`
	Title          string     `json:"title,omitempty"`
	Duration       float64    `json:"duration_seconds"`
	Candidates     int        `json:"candidates"`
	Selected       int        `json:"selected"`
	Segments       int        `json:"segments"`
	Gaps           int        `json:"gaps"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// Elapsed returns the run duration, measured to now while still running.
func (r Run) Elapsed(now time.Time) time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

// Outcome carries the counts recorded when a run completes.
type Outcome struct {
	ManifestPath string
	Title        string
	Duration     float64
	Candidates   int
	Selected     int
	Segments     int
	Gaps         int
}
