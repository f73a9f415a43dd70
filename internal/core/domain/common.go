package domain

import "time"

// AuditFields records who created and last changed an entity. Embedded by
// every entity that editors can modify, so provenance survives alongside the
// data itself.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// NewAuditFields stamps a freshly created entity: creation and last update
// both attributed to the same actor and instant.
func NewAuditFields(by string, at time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     at,
		CreatedBy:     by,
		LastUpdatedAt: at,
		LastUpdatedBy: by,
	}
}

// Touch records a modification without disturbing the creation stamp.
func (a *AuditFields) Touch(by string, at time.Time) {
	a.LastUpdatedAt = at
	a.LastUpdatedBy = by
}
