// Package service implements user administration and presence. Presence is
// derived from the last successful sign-in rather than a live connection.
package service

import (
	"context"
	"errors"
	"time"

	"kronus_crm_backend/internal/auth"
	"kronus_crm_backend/internal/auth/password"
	"kronus_crm_backend/internal/events"
	"kronus_crm_backend/internal/users/repository"
	"kronus_crm_backend/internal/users/transport"
	"kronus_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// presenceWindow is how recently a user must have signed in to count as
// online.
const presenceWindow = time.Hour

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, params repository.CreateUserParams) (repository.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]repository.User, error)
	List(ctx context.Context, activeOnly bool) ([]repository.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) (repository.User, error)
}

type Service struct {
	store Store
	bus   events.Bus
	now   func() time.Time
}

func New(store Store, bus events.Bus) *Service {
	return &Service{store: store, bus: bus, now: time.Now}
}

func (s *Service) Create(ctx context.Context, req transport.CreateUserRequest) (transport.UserResponse, error) {
	for _, role := range req.Roles {
		if !auth.IsValidRole(role) {
			return transport.UserResponse{}, apperr.Validation("invalid role: " + role)
		}
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.UserResponse{}, apperr.Internal("failed to hash password", err)
	}

	user, err := s.store.Create(ctx, repository.CreateUserParams{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Roles:        req.Roles,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return transport.UserResponse{}, apperr.Conflict("a user with this email already exists")
		}
		return transport.UserResponse{}, apperr.Internal("failed to create user", err)
	}

	// The welcome email carries the temporary password so the user can sign
	// in and change it.
	s.bus.Publish(ctx, events.UserCreated{
		BaseEvent:    events.NewBaseEvent(),
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		TempPassword: req.Password,
	})

	return s.toResponse(user), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.UserResponse, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.UserResponse{}, apperr.NotFound("user not found")
		}
		return transport.UserResponse{}, apperr.Internal("failed to load user", err)
	}
	return s.toResponse(user), nil
}

func (s *Service) List(ctx context.Context, req transport.ListUsersRequest) (transport.UserListResponse, error) {
	users, err := s.store.List(ctx, req.ActiveOnly)
	if err != nil {
		return transport.UserListResponse{}, apperr.Internal("failed to list users", err)
	}

	items := make([]transport.UserResponse, len(users))
	for i, user := range users {
		items[i] = s.toResponse(user)
	}
	return transport.UserListResponse{Items: items, Total: len(items)}, nil
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.store.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("failed to update user", err)
	}
	return nil
}

func (s *Service) UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) (transport.UserResponse, error) {
	for _, role := range roles {
		if !auth.IsValidRole(role) {
			return transport.UserResponse{}, apperr.Validation("invalid role: " + role)
		}
	}

	user, err := s.store.UpdateRoles(ctx, id, roles)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.UserResponse{}, apperr.NotFound("user not found")
		}
		return transport.UserResponse{}, apperr.Internal("failed to update roles", err)
	}
	return s.toResponse(user), nil
}

// isOnline reports whether the user signed in within the presence window.
func (s *Service) isOnline(lastLoginAt *time.Time) bool {
	if lastLoginAt == nil {
		return false
	}
	return s.now().Sub(*lastLoginAt) < presenceWindow
}

func (s *Service) toResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Roles:       user.Roles,
		IsActive:    user.IsActive,
		IsOnline:    s.isOnline(user.LastLoginAt),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
