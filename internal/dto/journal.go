package dto

import (
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// --- Journal DTOs ---

// CreateJournalRequest defines data for creating a new journal.
type CreateJournalRequest struct {
	Path        string `json:"path" binding:"required,lowercase,alphanum"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateJournalSettingsRequest defines the publishing configuration a journal
// manager may change. Pointers differentiate omitted fields from zero values.
type UpdateJournalSettingsRequest struct {
	Name                      *string `json:"name"`
	Description               *string `json:"description"`
	PublishingMode            *string `json:"publishingMode" binding:"omitempty,oneof=OPEN SUBSCRIPTION NONE"`
	DelayedOpenAccessDuration *int    `json:"delayedOpenAccessDuration" binding:"omitempty,min=0"`
	DOIPrefix                 *string `json:"doiPrefix"`
}

// JournalResponse defines data returned for a journal.
type JournalResponse struct {
	JournalID                 string    `json:"journalID"`
	Path                      string    `json:"path"`
	Name                      string    `json:"name"`
	Description               string    `json:"description,omitempty"`
	PublishingMode            string    `json:"publishingMode"`
	DelayedOpenAccessDuration int       `json:"delayedOpenAccessDuration"`
	DOIPrefix                 string    `json:"doiPrefix,omitempty"`
	CurrentIssueID            *string   `json:"currentIssueID,omitempty"`
	Enabled                   bool      `json:"enabled"`
	CreatedAt                 time.Time `json:"createdAt"`
	CreatedBy                 string    `json:"createdBy"` // UserID
	LastUpdatedAt             time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy             string    `json:"lastUpdatedBy"` // UserID
}

// ToJournalResponse converts domain.Journal to DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	return JournalResponse{
		JournalID:                 j.JournalID,
		Path:                      j.Path,
		Name:                      j.Name,
		Description:               j.Description,
		PublishingMode:            string(j.PublishingMode),
		DelayedOpenAccessDuration: j.DelayedOpenAccessDuration,
		DOIPrefix:                 j.DOIPrefix,
		CurrentIssueID:            j.CurrentIssueID,
		Enabled:                   j.Enabled,
		CreatedAt:                 j.CreatedAt,
		CreatedBy:                 j.CreatedBy,
		LastUpdatedAt:             j.LastUpdatedAt,
		LastUpdatedBy:             j.LastUpdatedBy,
	}
}

// ListJournalsResponse wraps a list of journals.
type ListJournalsResponse struct {
	Journals []JournalResponse `json:"journals"`
}

// ToListJournalsResponse converts a slice of domain.Journal to DTO.
func ToListJournalsResponse(js []domain.Journal) ListJournalsResponse {
	list := make([]JournalResponse, len(js))
	for i, j := range js {
		list[i] = ToJournalResponse(&j)
	}
	return ListJournalsResponse{Journals: list}
}

// --- User Journal Membership DTOs ---

// AddUserToJournalRequest defines data for adding a user to a journal.
type AddUserToJournalRequest struct {
	UserID string                 `json:"userID" binding:"required"`
	Role   domain.UserJournalRole `json:"role" binding:"required,oneof=MANAGER EDITOR ASSISTANT READER"`
}

// UpdateUserJournalRoleRequest defines data for changing a member's role.
type UpdateUserJournalRoleRequest struct {
	Role domain.UserJournalRole `json:"role" binding:"required,oneof=MANAGER EDITOR ASSISTANT READER"`
}

// UserJournalResponse defines data returned about a user's membership.
type UserJournalResponse struct {
	UserID    string                 `json:"userID"`
	UserName  string                 `json:"userName,omitempty"`
	JournalID string                 `json:"journalID"`
	Role      domain.UserJournalRole `json:"role"`
	JoinedAt  time.Time              `json:"joinedAt"`
}

// ToUserJournalResponse converts domain.UserJournal to DTO.
func ToUserJournalResponse(uj *domain.UserJournal) UserJournalResponse {
	return UserJournalResponse{
		UserID:    uj.UserID,
		UserName:  uj.UserName,
		JournalID: uj.JournalID,
		Role:      uj.Role,
		JoinedAt:  uj.JoinedAt,
	}
}

// ToListJournalUsersResponse converts a slice of domain.UserJournal to DTOs.
func ToListJournalUsersResponse(ujs []domain.UserJournal) []UserJournalResponse {
	list := make([]UserJournalResponse, len(ujs))
	for i, uj := range ujs {
		list[i] = ToUserJournalResponse(&uj)
	}
	return list
}
