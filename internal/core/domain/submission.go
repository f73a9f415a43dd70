package domain

import "time"

// SubmissionStatus indicates where a submission sits in the publication
// workflow. Publications carry the same status values; a submission's status
// is derived from the aggregate of its publications, except DECLINED which is
// an editorial decision and is never overwritten by derivation.
type SubmissionStatus string

const (
	SubmissionQueued    SubmissionStatus = "QUEUED"    // In the editorial workflow, not yet scheduled
	SubmissionScheduled SubmissionStatus = "SCHEDULED" // Assigned to an issue that is not yet published
	SubmissionPublished SubmissionStatus = "PUBLISHED" // At least one publication is live
	SubmissionDeclined  SubmissionStatus = "DECLINED"  // Rejected editorially
)

// Submission represents a single submitted work and its workflow state within
// a journal. Its versioned content lives in Publication rows.
type Submission struct {
	SubmissionID         string           `json:"submissionID"`         // Primary Key (e.g., UUID)
	JournalID            string           `json:"journalID"`            // FK -> journals.journal_id (NON-NULL)
	Status               SubmissionStatus `json:"status"`               // Derived from publications, except DECLINED
	CurrentPublicationID *string          `json:"currentPublicationID"` // Nullable FK -> publications.publication_id
	DateSubmitted        time.Time        `json:"dateSubmitted"`        // When the work entered the workflow
	AuditFields
}

// DeriveSubmissionStatus computes the submission status implied by a set of
// publications: PUBLISHED when any publication is published, SCHEDULED when
// any is scheduled against an issue, QUEUED otherwise.
func DeriveSubmissionStatus(publications []Publication) SubmissionStatus {
	status := SubmissionQueued
	for _, p := range publications {
		switch p.Status {
		case SubmissionPublished:
			return SubmissionPublished
		case SubmissionScheduled:
			status = SubmissionScheduled
		}
	}
	return status
}
