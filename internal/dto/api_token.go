package dto

import (
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// CreateAPITokenRequest defines data for minting a programmatic access token.
// Omitting expiresInDays creates a token that never expires.
type CreateAPITokenRequest struct {
	Name          string `json:"name" binding:"required,min=3,max=100"`
	ExpiresInDays *int   `json:"expiresInDays,omitempty" binding:"omitempty,min=1,max=3650"`
}

// ExpiryDuration converts the requested lifetime to a duration, or nil for a
// non-expiring token.
func (r *CreateAPITokenRequest) ExpiryDuration() *time.Duration {
	if r.ExpiresInDays == nil {
		return nil
	}
	d := time.Duration(*r.ExpiresInDays) * 24 * time.Hour
	return &d
}

// APITokenResponse defines the metadata returned for a token. The secret
// itself never appears here.
type APITokenResponse struct {
	TokenID    string     `json:"tokenID"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateAPITokenResponse carries the plaintext secret alongside the stored
// metadata. This is the only response that ever contains the secret.
type CreateAPITokenResponse struct {
	Token   string           `json:"token"`
	Details APITokenResponse `json:"details"`
}

// ToAPITokenResponse converts a domain.APIToken to APITokenResponse DTO.
func ToAPITokenResponse(token *domain.APIToken) APITokenResponse {
	return APITokenResponse{
		TokenID:    token.TokenID,
		Name:       token.Name,
		LastUsedAt: token.LastUsedAt,
		ExpiresAt:  token.ExpiresAt,
		CreatedAt:  token.CreatedAt,
	}
}

// ToAPITokenResponseList converts a slice of domain tokens to DTOs.
func ToAPITokenResponseList(tokens []domain.APIToken) []APITokenResponse {
	result := make([]APITokenResponse, len(tokens))
	for i := range tokens {
		result[i] = ToAPITokenResponse(&tokens[i])
	}
	return result
}

// ToCreateAPITokenResponse pairs the one-time secret with the token metadata.
func ToCreateAPITokenResponse(secret string, token *domain.APIToken) CreateAPITokenResponse {
	return CreateAPITokenResponse{
		Token:   secret,
		Details: ToAPITokenResponse(token),
	}
}
