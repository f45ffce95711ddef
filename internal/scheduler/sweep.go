package scheduler

import (
	"context"
	"fmt"
	"time"

	"kronus_crm_backend/internal/events"
	"kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// DueLeadLister lists leads whose follow-up falls inside a window.
type DueLeadLister interface {
	ListDueFollowUps(ctx context.Context, from, to time.Time) ([]repository.DueLead, error)
}

// Sweeper scans for due follow-ups and publishes one digest event per agent.
// Day boundaries are computed in the business timezone, not UTC.
type Sweeper struct {
	leads DueLeadLister
	bus   events.Bus
	loc   *time.Location
	log   *logger.Logger
	now   func() time.Time
}

func NewSweeper(leads DueLeadLister, bus events.Bus, loc *time.Location, log *logger.Logger) *Sweeper {
	return &Sweeper{
		leads: leads,
		bus:   bus,
		loc:   loc,
		log:   log,
		now:   time.Now,
	}
}

// Run executes one sweep for the given window. A sweep with zero matches is a
// normal outcome and is logged, not an error.
func (s *Sweeper) Run(ctx context.Context, window string) error {
	from, to, err := s.windowBounds(window)
	if err != nil {
		return err
	}

	due, err := s.leads.ListDueFollowUps(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list due follow-ups: %w", err)
	}

	byAgent := make(map[uuid.UUID][]uuid.UUID)
	for _, lead := range due {
		byAgent[lead.AssignedToID] = append(byAgent[lead.AssignedToID], lead.ID)
	}

	for agentID, leadIDs := range byAgent {
		err := s.bus.PublishSync(ctx, events.FollowUpDigestDue{
			BaseEvent: events.NewBaseEvent(),
			AgentID:   agentID,
			Window:    window,
			Date:      from,
			LeadIDs:   leadIDs,
		})
		if err != nil {
			return fmt.Errorf("publish digest for agent %s: %w", agentID, err)
		}
	}

	s.log.SweepRun(window, len(due), len(byAgent))
	return nil
}

// windowBounds returns the half-open [from, to) day interval for the window
// in the sweeper's timezone.
func (s *Sweeper) windowBounds(window string) (time.Time, time.Time, error) {
	now := s.now().In(s.loc)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	switch window {
	case WindowToday:
		return startOfToday, startOfToday.AddDate(0, 0, 1), nil
	case WindowTomorrow:
		start := startOfToday.AddDate(0, 0, 1)
		return start, start.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid sweep window %q", window)
	}
}
