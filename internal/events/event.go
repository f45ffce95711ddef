// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"kronus_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID          uuid.UUID  `json:"leadId"`
	LeadName        string     `json:"leadName"`
	Source          string     `json:"source,omitempty"`
	AssignedAgentID *uuid.UUID `json:"assignedAgentId,omitempty"`
	CreatedByID     uuid.UUID  `json:"createdById"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadAssigned is published when a lead's assignee changes.
// NewAgent is nil when the lead is unassigned.
type LeadAssigned struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	LeadName      string     `json:"leadName"`
	PreviousAgent *uuid.UUID `json:"previousAgent,omitempty"`
	NewAgent      *uuid.UUID `json:"newAgent,omitempty"`
	AssignedByID  uuid.UUID  `json:"assignedById"`
}

func (e LeadAssigned) EventName() string { return "leads.assigned" }

// LeadStatusChanged is published when a lead's pipeline status changes.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ActorID   uuid.UUID `json:"actorId"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// =============================================================================
// Users Domain Events
// =============================================================================

// UserCreated is published when an admin provisions a new account. The
// temporary password rides along so the welcome email can include it; the
// bus is in-process and the event is never persisted.
type UserCreated struct {
	BaseEvent
	UserID       uuid.UUID `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	TempPassword string    `json:"-"`
}

func (e UserCreated) EventName() string { return "users.created" }

// =============================================================================
// Follow-up Domain Events
// =============================================================================

// FollowUpDigestDue is published by the scheduler when an agent's follow-up
// digest for a window should be dispatched.
type FollowUpDigestDue struct {
	BaseEvent
	AgentID uuid.UUID   `json:"agentId"`
	Window  string      `json:"window"` // "today" or "tomorrow"
	Date    time.Time   `json:"date"`
	LeadIDs []uuid.UUID `json:"leadIds"`
}

func (e FollowUpDigestDue) EventName() string { return "followups.digest.due" }
