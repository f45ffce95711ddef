package service

import (
	"context"
	"testing"
	"time"

	"kronus_crm_backend/internal/events"
	"kronus_crm_backend/internal/users/repository"
	"kronus_crm_backend/internal/users/transport"
	"kronus_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func newService(store Store) (*Service, *fakeBus) {
	bus := &fakeBus{}
	return New(store, bus), bus
}

type fakeStore struct {
	users map[uuid.UUID]repository.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uuid.UUID]repository.User)}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateUserParams) (repository.User, error) {
	for _, existing := range f.users {
		if existing.Email == params.Email {
			return repository.User{}, repository.ErrEmailTaken
		}
	}
	user := repository.User{
		ID:        uuid.New(),
		Email:     params.Email,
		Name:      params.Name,
		Roles:     params.Roles,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	user, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]repository.User, error) {
	out := make([]repository.User, 0)
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (f *fakeStore) List(_ context.Context, activeOnly bool) ([]repository.User, error) {
	out := make([]repository.User, 0)
	for _, user := range f.users {
		if activeOnly && !user.IsActive {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (f *fakeStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsActive = active
	f.users[id] = user
	return nil
}

func (f *fakeStore) UpdateRoles(_ context.Context, id uuid.UUID, roles []string) (repository.User, error) {
	user, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	user.Roles = roles
	f.users[id] = user
	return user, nil
}

func TestPresenceFromLastLogin(t *testing.T) {
	store := newFakeStore()
	svc, _ := newService(store)

	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	recent := now.Add(-30 * time.Minute)
	stale := now.Add(-2 * time.Hour)

	online := repository.User{ID: uuid.New(), Name: "Priya Nair", IsActive: true, LastLoginAt: &recent}
	offline := repository.User{ID: uuid.New(), Name: "Arjun Rao", IsActive: true, LastLoginAt: &stale}
	never := repository.User{ID: uuid.New(), Name: "Vikram Singh", IsActive: true}
	store.users[online.ID] = online
	store.users[offline.ID] = offline
	store.users[never.ID] = never

	resp, err := svc.List(context.Background(), transport.ListUsersRequest{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	got := make(map[uuid.UUID]bool)
	for _, item := range resp.Items {
		got[item.ID] = item.IsOnline
	}
	if !got[online.ID] {
		t.Error("user who signed in 30m ago should be online")
	}
	if got[offline.ID] {
		t.Error("user who signed in 2h ago should be offline")
	}
	if got[never.ID] {
		t.Error("user who never signed in should be offline")
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc, _ := newService(newFakeStore())

	_, err := svc.Create(context.Background(), transport.CreateUserRequest{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "s3cret-pass",
		Roles:    []string{"SUPERUSER"},
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateDuplicateEmailIsConflict(t *testing.T) {
	svc, _ := newService(newFakeStore())

	req := transport.CreateUserRequest{
		Email:    "dup@example.com",
		Name:     "First",
		Password: "s3cret-pass",
		Roles:    []string{"SALESMAN"},
	}
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreatePublishesWelcomeEvent(t *testing.T) {
	svc, bus := newService(newFakeStore())

	resp, err := svc.Create(context.Background(), transport.CreateUserRequest{
		Email:    "priya@example.com",
		Name:     "Priya Nair",
		Password: "temp-pass-123",
		Roles:    []string{"SALESMAN"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	created, ok := bus.published[0].(events.UserCreated)
	if !ok {
		t.Fatalf("expected UserCreated, got %T", bus.published[0])
	}
	if created.UserID != resp.ID {
		t.Errorf("event user id = %s, want %s", created.UserID, resp.ID)
	}
	if created.Email != "priya@example.com" || created.Name != "Priya Nair" {
		t.Errorf("unexpected event payload %+v", created)
	}
	if created.TempPassword != "temp-pass-123" {
		t.Error("event should carry the temporary password for the welcome email")
	}
}

func TestCreateFailureDoesNotPublish(t *testing.T) {
	svc, bus := newService(newFakeStore())

	req := transport.CreateUserRequest{
		Email:    "dup@example.com",
		Name:     "First",
		Password: "s3cret-pass",
		Roles:    []string{"SALESMAN"},
	}
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), req); err == nil {
		t.Fatal("duplicate create should fail")
	}

	if len(bus.published) != 1 {
		t.Fatalf("failed create must not publish, got %d events", len(bus.published))
	}
}

func TestSetActiveUnknownUser(t *testing.T) {
	svc, _ := newService(newFakeStore())

	err := svc.SetActive(context.Background(), uuid.New(), false)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
