package domain

import "time"

// APIToken is a long-lived credential for programmatic access to the
// platform, e.g. harvesting scripts or publishing automation. Only the
// SHA-256 digest of the issued secret is stored; the plaintext is shown once
// at creation and never again.
type APIToken struct {
	TokenID    string     `json:"tokenID"`
	UserID     string     `json:"userID"`
	Name       string     `json:"name"`
	TokenHash  string     `json:"-"` // Never expose the digest in JSON responses
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"-"` // Soft delete marker
}

// ExpiredAt reports whether the token is past its expiry at the given
// instant. Tokens without an expiry never expire.
func (t *APIToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}

// MarkUsed records a successful authentication with the token.
func (t *APIToken) MarkUsed(now time.Time) {
	t.LastUsedAt = &now
}
