package dto

import (
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// --- Issue DTOs ---

// CreateIssueRequest defines data for creating a new issue.
type CreateIssueRequest struct {
	Volume      int    `json:"volume" binding:"required,min=1"`
	Number      string `json:"number" binding:"required"`
	Year        int    `json:"year" binding:"required,min=1000"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ShowVolume  *bool  `json:"showVolume"`
	ShowNumber  *bool  `json:"showNumber"`
	ShowYear    *bool  `json:"showYear"`
	ShowTitle   *bool  `json:"showTitle"`
}

// UpdateIssueRequest defines the data allowed for updating issue metadata.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateIssueRequest struct {
	Volume            *int    `json:"volume" binding:"omitempty,min=1"`
	Number            *string `json:"number"`
	Year              *int    `json:"year" binding:"omitempty,min=1000"`
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	CoverImageURL     *string `json:"coverImageURL"`
	CoverImageAltText *string `json:"coverImageAltText"`
	ShowVolume        *bool   `json:"showVolume"`
	ShowNumber        *bool   `json:"showNumber"`
	ShowYear          *bool   `json:"showYear"`
	ShowTitle         *bool   `json:"showTitle"`
}

// PublishIssueRequest defines the options accepted when publishing an issue.
type PublishIssueRequest struct {
	// Confirmed acknowledges side effects that need explicit consent, such as
	// DOI assignment.
	Confirmed bool `json:"confirmed"`
	// AssignDOIs requests DOI assignment for the issue on first publish.
	AssignDOIs bool `json:"assignDOIs"`
	// Notify requests a notification fan-out to the journal's readers.
	Notify bool `json:"notify"`
}

// ListIssuesParams defines query parameters for listing issues.
type ListIssuesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	Published *bool   `form:"published"` // nil lists both
	Volume    *int    `form:"volume"`
	Year      *int    `form:"year"`
}

// IssueResponse defines data returned for an issue.
type IssueResponse struct {
	IssueID           string     `json:"issueID"`
	JournalID         string     `json:"journalID"`
	Volume            int        `json:"volume"`
	Number            string     `json:"number"`
	Year              int        `json:"year"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Identification    string     `json:"identification"`
	Published         bool       `json:"published"`
	DatePublished     *time.Time `json:"datePublished,omitempty"`
	AccessStatus      string     `json:"accessStatus"`
	OpenAccessDate    *time.Time `json:"openAccessDate,omitempty"`
	DOI               *string    `json:"doi,omitempty"`
	CoverImageURL     *string    `json:"coverImageURL,omitempty"`
	CoverImageAltText *string    `json:"coverImageAltText,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	CreatedBy         string     `json:"createdBy"` // UserID
	LastUpdatedAt     time.Time  `json:"lastUpdatedAt"`
	LastUpdatedBy     string     `json:"lastUpdatedBy"` // UserID
}

// ToIssueResponse converts domain.Issue to DTO.
func ToIssueResponse(i *domain.Issue) IssueResponse {
	return IssueResponse{
		IssueID:           i.IssueID,
		JournalID:         i.JournalID,
		Volume:            i.Volume,
		Number:            i.Number,
		Year:              i.Year,
		Title:             i.Title,
		Description:       i.Description,
		Identification:    i.Identification(),
		Published:         i.Published,
		DatePublished:     i.DatePublished,
		AccessStatus:      string(i.AccessStatus),
		OpenAccessDate:    i.OpenAccessDate,
		DOI:               i.DOI,
		CoverImageURL:     i.CoverImageURL,
		CoverImageAltText: i.CoverImageAltText,
		CreatedAt:         i.CreatedAt,
		CreatedBy:         i.CreatedBy,
		LastUpdatedAt:     i.LastUpdatedAt,
		LastUpdatedBy:     i.LastUpdatedBy,
	}
}

// ListIssuesResponse wraps a paginated list of issues.
type ListIssuesResponse struct {
	Issues    []IssueResponse `json:"issues"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToListIssuesResponse converts a slice of domain.Issue to DTO.
func ToListIssuesResponse(issues []domain.Issue, nextToken *string) ListIssuesResponse {
	list := make([]IssueResponse, len(issues))
	for i, issue := range issues {
		list[i] = ToIssueResponse(&issue)
	}
	return ListIssuesResponse{Issues: list, NextToken: nextToken}
}

// --- Lifecycle result DTOs ---

// GlobalEvent names a state change clients use to invalidate cached data.
type GlobalEvent struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data,omitempty"`
}

// SubmissionOutcome reports the result of the publication cascade for one
// submission touched by an issue lifecycle operation.
type SubmissionOutcome struct {
	SubmissionID string `json:"submissionID"`
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
}

// IssueLifecycleResult is the response of the issue lifecycle operations.
// Either NeedsConfirmation is set (nothing was changed and the caller must
// resubmit with confirmation), or Issue carries the resulting state.
type IssueLifecycleResult struct {
	NeedsConfirmation   bool                `json:"needsConfirmation,omitempty"`
	ConfirmationMessage string              `json:"confirmationMessage,omitempty"`
	Issue               *IssueResponse      `json:"issue,omitempty"`
	Event               *GlobalEvent        `json:"event,omitempty"`
	Submissions         []SubmissionOutcome `json:"submissions,omitempty"`
}
