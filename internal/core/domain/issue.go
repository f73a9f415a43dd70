package domain

import (
	"strconv"
	"time"
)

// IssueAccessStatus indicates how readers may access an issue's content.
type IssueAccessStatus string

const (
	// AccessOpen means the issue content is freely available.
	AccessOpen IssueAccessStatus = "OPEN"
	// AccessSubscription means the issue content requires a subscription,
	// until OpenAccessDate (when set) passes.
	AccessSubscription IssueAccessStatus = "SUBSCRIPTION"
)

// Issue represents a numbered collection of published works within a journal.
type Issue struct {
	IssueID           string            `json:"issueID"`           // Primary Key (e.g., UUID)
	JournalID         string            `json:"journalID"`         // FK -> journals.journal_id (NON-NULL)
	Volume            int               `json:"volume"`            // Volume number
	Number            string            `json:"number"`            // Issue number; free-form to allow e.g. "3-4"
	Year              int               `json:"year"`              // Publication year
	Title             string            `json:"title"`             // Optional issue title
	Description       string            `json:"description"`       // Optional description
	Published         bool              `json:"published"`         // Whether the issue has been published
	DatePublished     *time.Time        `json:"datePublished"`     // Nullable; set on publish, cleared on unpublish
	AccessStatus      IssueAccessStatus `json:"accessStatus"`      // OPEN or SUBSCRIPTION
	OpenAccessDate    *time.Time        `json:"openAccessDate"`    // Nullable; when subscription content opens up
	DOI               *string           `json:"doi"`               // Nullable; assigned on first publish
	CoverImageURL     *string           `json:"coverImageURL"`     // Nullable cover image location
	CoverImageAltText *string           `json:"coverImageAltText"` // Nullable alt text for the cover image
	ShowVolume        bool              `json:"showVolume"`        // Display toggles for issue identification
	ShowNumber        bool              `json:"showNumber"`
	ShowYear          bool              `json:"showYear"`
	ShowTitle         bool              `json:"showTitle"`
	Version           int64             `json:"version"` // Optimistic locking version
	AuditFields
}

// IsOpenToReaders reports whether the issue content is readable without a
// subscription at the given time.
func (i *Issue) IsOpenToReaders(now time.Time) bool {
	if i.AccessStatus == AccessOpen {
		return true
	}
	return i.OpenAccessDate != nil && !now.Before(*i.OpenAccessDate)
}

// Identification assembles the human-readable issue identifier from the parts
// the issue is configured to show, e.g. "Vol. 12 No. 3 (2024): Special Issue".
func (i *Issue) Identification() string {
	var out string
	if i.ShowVolume {
		out += "Vol. " + strconv.Itoa(i.Volume)
	}
	if i.ShowNumber && i.Number != "" {
		if out != "" {
			out += " "
		}
		out += "No. " + i.Number
	}
	if i.ShowYear {
		if out != "" {
			out += " "
		}
		out += "(" + strconv.Itoa(i.Year) + ")"
	}
	if i.ShowTitle && i.Title != "" {
		if out != "" {
			out += ": "
		}
		out += i.Title
	}
	return out
}

// IssueUpdate describes a partial update to an issue. Fields left unset are
// not touched; fields set to an explicit null clear the column.
type IssueUpdate struct {
	Volume            Optional[int]
	Number            Optional[string]
	Year              Optional[int]
	Title             Optional[string]
	Description       Optional[string]
	Published         Optional[bool]
	DatePublished     Optional[time.Time]
	AccessStatus      Optional[IssueAccessStatus]
	OpenAccessDate    Optional[time.Time]
	DOI               Optional[string]
	CoverImageURL     Optional[string]
	CoverImageAltText Optional[string]
	ShowVolume        Optional[bool]
	ShowNumber        Optional[bool]
	ShowYear          Optional[bool]
	ShowTitle         Optional[bool]
}
