package service

import (
	"testing"
	"time"

	"kronus_crm_backend/internal/auth/repository"

	"github.com/google/uuid"
)

func TestProfileFromUser(t *testing.T) {
	lastLogin := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	user := repository.User{
		ID:           uuid.New(),
		Email:        "priya@example.com",
		PasswordHash: "$2a$10$hash",
		Name:         "Priya Nair",
		Roles:        []string{"MANAGER", "SALESMAN"},
		IsActive:     true,
		LastLoginAt:  &lastLogin,
		CreatedAt:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	}

	profile := profileFromUser(user)

	if profile.ID != user.ID {
		t.Errorf("expected id %s, got %s", user.ID, profile.ID)
	}
	if profile.Email != user.Email {
		t.Errorf("expected email %q, got %q", user.Email, profile.Email)
	}
	if profile.Name != user.Name {
		t.Errorf("expected name %q, got %q", user.Name, profile.Name)
	}
	if len(profile.Roles) != 2 || profile.Roles[0] != "MANAGER" {
		t.Errorf("unexpected roles %v", profile.Roles)
	}
	if profile.LastLoginAt == nil || !profile.LastLoginAt.Equal(lastLogin) {
		t.Errorf("unexpected lastLoginAt %v", profile.LastLoginAt)
	}
	if !profile.CreatedAt.Equal(user.CreatedAt) || !profile.UpdatedAt.Equal(user.UpdatedAt) {
		t.Error("timestamps should carry over unchanged")
	}
}
