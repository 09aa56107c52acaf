package identity

import (
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// SignInRequest represents a sign-in attempt
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

// SignUpRequest represents a self-service registration
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	FullName string `json:"full_name" binding:"required,min=1,max=200"`
	Role     string `json:"role" binding:"omitempty,oneof=admin manager member"`
}

// RefreshRequest carries a refresh token to exchange for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse is the result of a successful sign-in or sign-up.
// Tokens is nil in static mode where no credentials are issued.
type AuthResponse struct {
	User   UserResponse    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens,omitempty"`
}

// CreateUserRequest represents a request to create a user profile
type CreateUserRequest struct {
	Email      string `json:"email" binding:"required,email"`
	FullName   string `json:"full_name" binding:"required,min=1,max=200"`
	Password   string `json:"password" binding:"omitempty,min=8,max=72"`
	Role       string `json:"role" binding:"omitempty,oneof=admin manager member"`
	Department string `json:"department" binding:"omitempty,max=100"`
}

// UpdateUserRequest represents a partial update of a user profile
type UpdateUserRequest struct {
	FullName   *string `json:"full_name" binding:"omitempty,min=1,max=200"`
	Role       *string `json:"role" binding:"omitempty,oneof=admin manager member"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	IsActive   *bool   `json:"is_active"`
}

// UserResponse represents a user profile in API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	AvatarURL   *string    `json:"avatar_url"`
	Role        string     `json:"role"`
	Department  *string    `json:"department"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserListFilter represents filters for listing users
type UserListFilter struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Search     string `form:"search"`
	Role       string `form:"role"`
	Department string `form:"department"`
	IsActive   string `form:"is_active"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir"`
}

// AvatarUploadRequest asks for a presigned upload slot
type AvatarUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// AvatarUploadResponse carries the presigned upload URL for an avatar
type AvatarUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AvatarDownloadResponse carries the presigned download URL for an avatar
type AvatarDownloadResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ToUserResponse converts a domain user to a response DTO
func ToUserResponse(user *identity.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		AvatarURL:   user.AvatarURL,
		Role:        string(user.Role),
		Department:  user.Department,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// ToUserResponses converts a slice of domain users to response DTOs
func ToUserResponses(users []identity.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses
}
