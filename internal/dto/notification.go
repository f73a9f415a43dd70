package dto

import (
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// ListNotificationsParams defines query parameters for listing notifications.
type ListNotificationsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// NotificationResponse defines data returned for a notification.
type NotificationResponse struct {
	NotificationID string     `json:"notificationID"`
	JournalID      string     `json:"journalID"`
	Type           string     `json:"type"`
	Level          string     `json:"level"`
	AssocType      string     `json:"assocType"`
	AssocID        string     `json:"assocID"`
	DateCreated    time.Time  `json:"dateCreated"`
	DateRead       *time.Time `json:"dateRead,omitempty"`
}

// ToNotificationResponse converts a domain.Notification to DTO.
func ToNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		NotificationID: n.NotificationID,
		JournalID:      n.JournalID,
		Type:           string(n.Type),
		Level:          string(n.Level),
		AssocType:      string(n.AssocType),
		AssocID:        n.AssocID,
		DateCreated:    n.DateCreated,
		DateRead:       n.DateRead,
	}
}

// ListNotificationsResponse wraps a paginated list of notifications.
type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	NextToken     *string                `json:"nextToken,omitempty"`
}

// ToListNotificationsResponse converts a slice of domain.Notification to DTO.
func ToListNotificationsResponse(ns []domain.Notification, nextToken *string) ListNotificationsResponse {
	list := make([]NotificationResponse, len(ns))
	for i, n := range ns {
		list[i] = ToNotificationResponse(&n)
	}
	return ListNotificationsResponse{Notifications: list, NextToken: nextToken}
}
