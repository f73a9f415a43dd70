package dto

import (
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// --- Submission DTOs ---

// CreateSubmissionRequest defines data for creating a new submission with its
// first publication version.
type CreateSubmissionRequest struct {
	Title    string `json:"title" binding:"required"`
	Abstract string `json:"abstract"`
}

// ListSubmissionsParams defines query parameters for listing submissions.
type ListSubmissionsParams struct {
	Status  []string `form:"status" binding:"omitempty,dive,oneof=QUEUED SCHEDULED PUBLISHED DECLINED"`
	IssueID *string  `form:"issueID"`
}

// PublicationResponse defines data returned for a publication version.
type PublicationResponse struct {
	PublicationID string     `json:"publicationID"`
	SubmissionID  string     `json:"submissionID"`
	IssueID       *string    `json:"issueID,omitempty"`
	Version       int        `json:"version"`
	Status        string     `json:"status"`
	Title         string     `json:"title"`
	Abstract      string     `json:"abstract,omitempty"`
	DatePublished *time.Time `json:"datePublished,omitempty"`
	DOI           *string    `json:"doi,omitempty"`
}

// ToPublicationResponse converts a domain.Publication to DTO.
func ToPublicationResponse(p *domain.Publication) PublicationResponse {
	return PublicationResponse{
		PublicationID: p.PublicationID,
		SubmissionID:  p.SubmissionID,
		IssueID:       p.IssueID,
		Version:       p.Version,
		Status:        string(p.Status),
		Title:         p.Title,
		Abstract:      p.Abstract,
		DatePublished: p.DatePublished,
		DOI:           p.DOI,
	}
}

// ToPublicationResponses converts a slice of domain.Publication to DTOs.
func ToPublicationResponses(ps []domain.Publication) []PublicationResponse {
	responses := make([]PublicationResponse, len(ps))
	for i, p := range ps {
		responses[i] = ToPublicationResponse(&p)
	}
	return responses
}

// SubmissionResponse defines the combined response for a submission and its
// publication versions.
type SubmissionResponse struct {
	SubmissionID         string                `json:"submissionID"`
	JournalID            string                `json:"journalID"`
	Status               string                `json:"status"`
	CurrentPublicationID *string               `json:"currentPublicationID,omitempty"`
	DateSubmitted        time.Time             `json:"dateSubmitted"`
	Publications         []PublicationResponse `json:"publications"`
}

// ToSubmissionResponse converts a domain.Submission with its publications to DTO.
func ToSubmissionResponse(s *domain.Submission, publications []domain.Publication) SubmissionResponse {
	return SubmissionResponse{
		SubmissionID:         s.SubmissionID,
		JournalID:            s.JournalID,
		Status:               string(s.Status),
		CurrentPublicationID: s.CurrentPublicationID,
		DateSubmitted:        s.DateSubmitted,
		Publications:         ToPublicationResponses(publications),
	}
}

// ListSubmissionsResponse wraps a list of submissions.
type ListSubmissionsResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
}

// SchedulePublicationRequest assigns a publication to an issue.
type SchedulePublicationRequest struct {
	IssueID string `json:"issueID" binding:"required"`
}

// --- Galley DTOs ---

// CreateGalleyRequest defines data for attaching a galley to a publication.
type CreateGalleyRequest struct {
	Label     string  `json:"label" binding:"required"`
	Locale    string  `json:"locale" binding:"required"`
	URLRemote *string `json:"urlRemote" binding:"omitempty,url"`
	FileID    *string `json:"fileID"`
}

// GalleyResponse defines data returned for a galley.
type GalleyResponse struct {
	GalleyID      string  `json:"galleyID"`
	PublicationID string  `json:"publicationID"`
	Label         string  `json:"label"`
	Locale        string  `json:"locale"`
	URLRemote     *string `json:"urlRemote,omitempty"`
	FileID        *string `json:"fileID,omitempty"`
	Seq           int     `json:"seq"`
}

// ToGalleyResponse converts a domain.Galley to DTO.
func ToGalleyResponse(g *domain.Galley) GalleyResponse {
	return GalleyResponse{
		GalleyID:      g.GalleyID,
		PublicationID: g.PublicationID,
		Label:         g.Label,
		Locale:        g.Locale,
		URLRemote:     g.URLRemote,
		FileID:        g.FileID,
		Seq:           g.Seq,
	}
}

// ToGalleyResponses converts a slice of domain.Galley to DTOs.
func ToGalleyResponses(gs []domain.Galley) []GalleyResponse {
	responses := make([]GalleyResponse, len(gs))
	for i, g := range gs {
		responses[i] = ToGalleyResponse(&g)
	}
	return responses
}
