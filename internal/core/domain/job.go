package domain

import "time"

// Queue names understood by the background worker.
const (
	QueueUsageStats = "usage_stats"
)

// QueuedJob represents a unit of deferred work persisted in the jobs table.
// Jobs are claimed by the worker, executed at least once, and deleted on
// success; failed jobs are released with an incremented attempt counter.
type QueuedJob struct {
	JobID       int64      `json:"jobID"`      // Primary Key (bigserial)
	Queue       string     `json:"queue"`      // Which handler processes this job
	Connection  string     `json:"connection"` // Named connection the job was enqueued on
	Payload     []byte     `json:"payload"`    // JSON-encoded handler input
	Attempts    int        `json:"attempts"`   // Number of times the job has been claimed
	ReservedAt  *time.Time `json:"reservedAt"` // Nullable; set while a worker holds the job
	AvailableAt time.Time  `json:"availableAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// UsageStatsJobPayload is the payload of jobs on the usage_stats queue. LoadID
// names one batch of staged usage events; compiling the same LoadID twice
// yields the same metric rows.
type UsageStatsJobPayload struct {
	LoadID string `json:"loadId"`
}
