package scheduler

import (
	"context"
	"testing"
	"time"

	"kronus_crm_backend/internal/events"
	"kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLister struct {
	leads   []repository.DueLead
	gotFrom time.Time
	gotTo   time.Time
	listErr error
}

func (f *fakeLister) ListDueFollowUps(_ context.Context, from, to time.Time) ([]repository.DueLead, error) {
	f.gotFrom, f.gotTo = from, to
	return f.leads, f.listErr
}

type captureBus struct {
	published []events.Event
}

func (b *captureBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *captureBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *captureBus) Subscribe(string, events.Handler) {}

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}
	return loc
}

func TestSweepWindowBoundsInBusinessTimezone(t *testing.T) {
	loc := kolkata(t)
	lister := &fakeLister{}
	sweeper := NewSweeper(lister, &captureBus{}, loc, logger.New("test"))
	sweeper.now = func() time.Time {
		// 2026-03-14 11:00 IST
		return time.Date(2026, time.March, 14, 11, 0, 0, 0, loc)
	}

	if err := sweeper.Run(context.Background(), WindowToday); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	wantFrom := time.Date(2026, time.March, 14, 0, 0, 0, 0, loc)
	wantTo := time.Date(2026, time.March, 15, 0, 0, 0, 0, loc)
	if !lister.gotFrom.Equal(wantFrom) || !lister.gotTo.Equal(wantTo) {
		t.Errorf("today window = [%v, %v), want [%v, %v)", lister.gotFrom, lister.gotTo, wantFrom, wantTo)
	}

	if err := sweeper.Run(context.Background(), WindowTomorrow); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if !lister.gotFrom.Equal(wantTo) {
		t.Errorf("tomorrow window should start at %v, got %v", wantTo, lister.gotFrom)
	}
}

func TestSweepGroupsLeadsByAgent(t *testing.T) {
	loc := kolkata(t)
	agentA := uuid.New()
	agentB := uuid.New()
	due := time.Date(2026, time.March, 14, 9, 0, 0, 0, loc)

	lister := &fakeLister{leads: []repository.DueLead{
		{ID: uuid.New(), Name: "Lead One", Status: "CONTACTED", FollowUpDate: due, AssignedToID: agentA},
		{ID: uuid.New(), Name: "Lead Two", Status: "NEGOTIATION", FollowUpDate: due, AssignedToID: agentA},
		{ID: uuid.New(), Name: "Lead Three", Status: "NEW", FollowUpDate: due, AssignedToID: agentB},
	}}
	bus := &captureBus{}
	sweeper := NewSweeper(lister, bus, loc, logger.New("test"))

	if err := sweeper.Run(context.Background(), WindowToday); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(bus.published) != 2 {
		t.Fatalf("expected one digest per agent, got %d events", len(bus.published))
	}

	counts := make(map[uuid.UUID]int)
	for _, event := range bus.published {
		digest, ok := event.(events.FollowUpDigestDue)
		if !ok {
			t.Fatalf("unexpected event type %T", event)
		}
		if digest.Window != WindowToday {
			t.Errorf("window = %q", digest.Window)
		}
		counts[digest.AgentID] = len(digest.LeadIDs)
	}
	if counts[agentA] != 2 || counts[agentB] != 1 {
		t.Errorf("digest lead counts = %v", counts)
	}
}

func TestSweepWithNoMatchesPublishesNothing(t *testing.T) {
	loc := kolkata(t)
	bus := &captureBus{}
	sweeper := NewSweeper(&fakeLister{}, bus, loc, logger.New("test"))

	if err := sweeper.Run(context.Background(), WindowTomorrow); err != nil {
		t.Fatalf("empty sweep should succeed: %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatalf("no events expected, got %d", len(bus.published))
	}
}

func TestSweepRejectsUnknownWindow(t *testing.T) {
	loc := kolkata(t)
	sweeper := NewSweeper(&fakeLister{}, &captureBus{}, loc, logger.New("test"))

	if err := sweeper.Run(context.Background(), "yesterday"); err == nil {
		t.Fatal("expected error for unknown window")
	}
}
