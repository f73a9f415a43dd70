package domain

import "time"

// UsageEvent is one staged reader interaction (an issue view, a galley
// download) awaiting compilation into daily metrics. Events are grouped into
// batches by LoadID.
type UsageEvent struct {
	EventID    string    `json:"eventID"`    // Primary Key (e.g., UUID)
	LoadID     string    `json:"loadID"`     // Batch identifier; one compile job per load
	JournalID  string    `json:"journalID"`  // FK -> journals.journal_id
	AssocType  AssocType `json:"assocType"`  // What was used (ISSUE, SUBMISSION)
	AssocID    string    `json:"assocID"`    // ID of the used entity
	OccurredAt time.Time `json:"occurredAt"` // When the interaction happened
}

// MetricRow is one compiled daily usage count for an entity. Rows carry the
// LoadID they were compiled from so a load can be recompiled idempotently.
type MetricRow struct {
	JournalID string    `json:"journalID"`
	AssocType AssocType `json:"assocType"`
	AssocID   string    `json:"assocID"`
	LoadID    string    `json:"loadID"`
	Day       string    `json:"day"` // YYYYMMDD
	Metric    int64     `json:"metric"`
}

// MetricsDay formats a timestamp as the day bucket used by metric rows.
func MetricsDay(t time.Time) string {
	return t.UTC().Format("20060102")
}
