package domain

import "time"

// AuthProvider identifies how a user account authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// User represents a user of the platform in the domain.
type User struct {
	UserID         string       `json:"userID"` // Primary Key (e.g., UUID)
	Username       string       `json:"username"`
	Email          string       `json:"email"`
	Name           string       `json:"name"`
	PasswordHash   string       `json:"-"` // Never expose the hash in JSON responses
	AuthProvider   AuthProvider `json:"authProvider"`
	ProviderUserID *string      `json:"-"`          // Subject identifier at the external provider, when any
	IsDisabled     bool         `json:"isDisabled"` // Disabled users are excluded from notification fan-outs
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete

	// Refresh token fields; the raw token is never stored.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}

// GoogleUserInfo is the subset of the Google userinfo response the platform
// consumes when linking or creating accounts.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
