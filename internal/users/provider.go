package users

import (
	"context"

	"kronus_crm_backend/internal/auth"
	"kronus_crm_backend/internal/users/repository"

	"github.com/google/uuid"
)

// Provider implements auth.UserProvider on top of the users repository, so
// other bounded contexts can resolve user profiles without importing this
// module's internals.
type Provider struct {
	repo *repository.Repository
}

func NewProvider(repo *repository.Repository) *Provider {
	return &Provider{repo: repo}
}

func (p *Provider) GetUserByID(ctx context.Context, userID uuid.UUID) (auth.Profile, error) {
	user, err := p.repo.GetByID(ctx, userID)
	if err != nil {
		return auth.Profile{}, err
	}
	return toProfile(user), nil
}

func (p *Provider) GetUsersByIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]auth.Profile, error) {
	users, err := p.repo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	profiles := make(map[uuid.UUID]auth.Profile, len(users))
	for _, user := range users {
		profiles[user.ID] = toProfile(user)
	}
	return profiles, nil
}

func toProfile(user repository.User) auth.Profile {
	return auth.Profile{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Roles:       user.Roles,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

var _ auth.UserProvider = (*Provider)(nil)
