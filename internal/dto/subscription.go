package dto

import (
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateSubscriptionTypeRequest defines data for creating a subscription
// offering on a journal.
type CreateSubscriptionTypeRequest struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	Cost           decimal.Decimal `json:"cost" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,iso4217"`
	DurationMonths int             `json:"durationMonths" binding:"required,min=1"`
	Institutional  bool            `json:"institutional"`
}

// SubscriptionTypeResponse defines data returned for a subscription type.
type SubscriptionTypeResponse struct {
	SubscriptionTypeID string          `json:"subscriptionTypeID"`
	JournalID          string          `json:"journalID"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Cost               decimal.Decimal `json:"cost"`
	CurrencyCode       string          `json:"currencyCode"`
	DurationMonths     int             `json:"durationMonths"`
	Institutional      bool            `json:"institutional"`
}

// ToSubscriptionTypeResponse converts a domain.SubscriptionType to DTO.
func ToSubscriptionTypeResponse(st *domain.SubscriptionType) SubscriptionTypeResponse {
	return SubscriptionTypeResponse{
		SubscriptionTypeID: st.SubscriptionTypeID,
		JournalID:          st.JournalID,
		Name:               st.Name,
		Description:        st.Description,
		Cost:               st.Cost,
		CurrencyCode:       st.CurrencyCode,
		DurationMonths:     st.DurationMonths,
		Institutional:      st.Institutional,
	}
}

// ToSubscriptionTypeResponses converts a slice of domain.SubscriptionType to DTOs.
func ToSubscriptionTypeResponses(sts []domain.SubscriptionType) []SubscriptionTypeResponse {
	responses := make([]SubscriptionTypeResponse, len(sts))
	for i, st := range sts {
		responses[i] = ToSubscriptionTypeResponse(&st)
	}
	return responses
}

// SubscriptionResponse defines data returned for a reader's subscription.
type SubscriptionResponse struct {
	SubscriptionID     string    `json:"subscriptionID"`
	SubscriptionTypeID string    `json:"subscriptionTypeID"`
	JournalID          string    `json:"journalID"`
	UserID             string    `json:"userID"`
	DateStart          time.Time `json:"dateStart"`
	DateEnd            time.Time `json:"dateEnd"`
}

// ToSubscriptionResponse converts a domain.Subscription to DTO.
func ToSubscriptionResponse(s *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		SubscriptionID:     s.SubscriptionID,
		SubscriptionTypeID: s.SubscriptionTypeID,
		JournalID:          s.JournalID,
		UserID:             s.UserID,
		DateStart:          s.DateStart,
		DateEnd:            s.DateEnd,
	}
}
