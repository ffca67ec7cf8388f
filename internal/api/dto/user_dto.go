package dto

import (
	"time"

	"github.com/estatehub/property-moderation/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	AcceptTerms bool   `json:"acceptTerms"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserStatusRequest asks for an active or suspended account.
type UserStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// UserStatusResponse is the compact reply to a status change.
type UserStatusResponse struct {
	User UserStatusSummary `json:"user"`
}

// UserStatusSummary identifies the user and its new status.
type UserStatusSummary struct {
	ID     string            `json:"id"`
	Status domain.UserStatus `json:"status"`
}

// UserResponse is the public user shape. The password hash is never included.
type UserResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Role             domain.Role       `json:"role"`
	Status           domain.UserStatus `json:"status"`
	IsActive         bool              `json:"isActive"`
	IsSuspended      bool              `json:"isSuspended"`
	SuspendedAt      *time.Time        `json:"suspendedAt,omitempty"`
	SuspendedBy      string            `json:"suspendedBy,omitempty"`
	SuspensionReason string            `json:"suspensionReason,omitempty"`
	IsDeleted        bool              `json:"isDeleted"`
	DeletedAt        *time.Time        `json:"deletedAt,omitempty"`
	DeletedBy        string            `json:"deletedBy,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// NewUserResponse renders a user.
func NewUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Status:      u.Status(),
		IsActive:    u.Active,
		IsSuspended: u.IsSuspended(),
		IsDeleted:   u.IsDeleted(),
		CreatedAt:   u.CreatedAt,
	}
	if s := u.Suspension; s != nil {
		at := s.At
		resp.SuspendedAt = &at
		resp.SuspendedBy = s.By
		resp.SuspensionReason = s.Reason
	}
	if d := u.Deletion; d != nil {
		at := d.At
		resp.DeletedAt = &at
		resp.DeletedBy = d.By
	}
	return resp
}

// NewUserResponses renders a page of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// TermsLogEntry is one row in the terms acceptance log.
type TermsLogEntry struct {
	UserID     string      `json:"userId"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	AcceptedAt time.Time   `json:"acceptedAt"`
	Version    string      `json:"version"`
	IPAddress  string      `json:"ipAddress,omitempty"`
}

// NewTermsLog renders users that accepted the terms.
func NewTermsLog(users []domain.User) []TermsLogEntry {
	out := make([]TermsLogEntry, 0, len(users))
	for _, u := range users {
		if u.Terms == nil {
			continue
		}
		out = append(out, TermsLogEntry{
			UserID:     u.ID,
			Name:       u.Name,
			Email:      u.Email,
			Role:       u.Role,
			AcceptedAt: u.Terms.AcceptedAt,
			Version:    u.Terms.Version,
			IPAddress:  u.Terms.IPAddress,
		})
	}
	return out
}
