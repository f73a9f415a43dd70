package dto

import (
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// UserResponse defines the public data returned for a user.
type UserResponse struct {
	UserID   string `json:"userID"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// ToUserResponse converts a domain.User to UserResponse DTO.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:   user.UserID,
		Username: user.Username,
		Email:    user.Email,
		Name:     user.Name,
	}
}
