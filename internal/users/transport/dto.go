package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required,min=1,max=150"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,oneof=ADMIN EXECUTIVE DIRECTOR MANAGER SALESMAN"`
}

type UpdateRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=ADMIN EXECUTIVE DIRECTOR MANAGER SALESMAN"`
}

type SetActiveRequest struct {
	IsActive bool `json:"isActive"`
}

type ListUsersRequest struct {
	ActiveOnly bool `form:"activeOnly"`
}

type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Roles       []string   `json:"roles"`
	IsActive    bool       `json:"isActive"`
	IsOnline    bool       `json:"isOnline"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Total int            `json:"total"`
}
