package domain

import "time"

// Publication represents one version of a submission's publishable content.
// Scheduling a publication against an issue and publishing that issue is what
// moves the owning submission through the workflow.
type Publication struct {
	PublicationID string           `json:"publicationID"` // Primary Key (e.g., UUID)
	SubmissionID  string           `json:"submissionID"`  // FK -> submissions.submission_id (NON-NULL)
	IssueID       *string          `json:"issueID"`       // Nullable FK -> issues.issue_id; set when scheduled
	Version       int              `json:"version"`       // 1-based version counter within the submission
	Status        SubmissionStatus `json:"status"`        // QUEUED, SCHEDULED or PUBLISHED
	Title         string           `json:"title"`         // Title of this version
	Abstract      string           `json:"abstract"`      // Nullable abstract text
	DatePublished *time.Time       `json:"datePublished"` // Nullable; set when the publication goes live
	DOI           *string          `json:"doi"`           // Nullable; assigned at publication time
	AuditFields
}

// IsScheduledInto reports whether the publication is scheduled (but not yet
// published) into the given issue.
func (p *Publication) IsScheduledInto(issueID string) bool {
	return p.Status == SubmissionScheduled && p.IssueID != nil && *p.IssueID == issueID
}

// IsPublishedInto reports whether the publication is live in the given issue.
func (p *Publication) IsPublishedInto(issueID string) bool {
	return p.Status == SubmissionPublished && p.IssueID != nil && *p.IssueID == issueID
}

// PublicationUpdate describes a partial update to a publication. Fields left
// unset are not touched; explicit nulls clear the column.
type PublicationUpdate struct {
	IssueID       Optional[string]
	Status        Optional[SubmissionStatus]
	Title         Optional[string]
	Abstract      Optional[string]
	DatePublished Optional[time.Time]
	DOI           Optional[string]
}
