// Package notification turns domain events into email deliveries. It
// subscribes to the event bus and inverts the dependency: the leads and
// scheduler modules never touch email providers or templates.
package notification

import (
	"context"
	"fmt"
	"sort"

	"kronus_crm_backend/internal/auth"
	"kronus_crm_backend/internal/email"
	"kronus_crm_backend/internal/events"
	leadrepo "kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// digestDateLayout matches the date format used in lead audit entries.
const digestDateLayout = "Jan 2, 2006"

// LeadReader loads lead rows for digest rendering.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadrepo.Lead, error)
}

// Dispatcher builds notification emails from events and feeds them to the
// delivery queue.
type Dispatcher struct {
	queue   *Queue
	sender  email.Sender
	users   auth.UserProvider
	leads   LeadReader
	baseURL string
	log     *logger.Logger
}

func NewDispatcher(queue *Queue, sender email.Sender, users auth.UserProvider, leads LeadReader, baseURL string, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		queue:   queue,
		sender:  sender,
		users:   users,
		leads:   leads,
		baseURL: baseURL,
		log:     log,
	}
}

// HandleLeadAssigned enqueues an assignment email for the new agent.
// Unassignments (nil NewAgent) are silent.
func (d *Dispatcher) HandleLeadAssigned(ctx context.Context, event events.Event) error {
	assigned, ok := event.(events.LeadAssigned)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if assigned.NewAgent == nil {
		return nil
	}

	agent, err := d.users.GetUserByID(ctx, *assigned.NewAgent)
	if err != nil {
		return fmt.Errorf("resolve assigned agent: %w", err)
	}
	if agent.Email == "" {
		return nil
	}

	assignedBy := ""
	if actor, err := d.users.GetUserByID(ctx, assigned.AssignedByID); err == nil {
		assignedBy = actor.Name
	}

	leadURL := d.leadURL(assigned.LeadID)
	leadName := assigned.LeadName

	d.queue.Enqueue(Job{
		Kind:      "assignment",
		Recipient: agent.Email,
		Send: func(sendCtx context.Context) error {
			return d.sender.SendAssignmentEmail(sendCtx, agent.Email, agent.Name, leadName, assignedBy, leadURL)
		},
	})
	return nil
}

// HandleFollowUpDigestDue builds one digest email per agent and window.
func (d *Dispatcher) HandleFollowUpDigestDue(ctx context.Context, event events.Event) error {
	digest, ok := event.(events.FollowUpDigestDue)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if len(digest.LeadIDs) == 0 {
		return nil
	}

	agent, err := d.users.GetUserByID(ctx, digest.AgentID)
	if err != nil {
		return fmt.Errorf("resolve digest agent: %w", err)
	}
	if agent.Email == "" {
		return nil
	}

	rows := make([]email.DigestLead, 0, len(digest.LeadIDs))
	for _, leadID := range digest.LeadIDs {
		lead, err := d.leads.GetByID(ctx, leadID)
		if err != nil {
			// The lead may have been deleted between sweep and dispatch.
			d.log.Warn("digest lead missing", "lead_id", leadID.String(), "error", err)
			continue
		}
		row := email.DigestLead{
			Name:     lead.Name,
			Phone:    lead.Phone,
			Status:   lead.Status,
			Priority: lead.Priority,
			URL:      d.leadURL(lead.ID),
		}
		if lead.Property != nil {
			row.Property = *lead.Property
		}
		if lead.FollowUpDate != nil {
			row.FollowUpDate = lead.FollowUpDate.Format(digestDateLayout)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	window := digest.Window

	d.queue.Enqueue(Job{
		Kind:      "followup_digest",
		Recipient: agent.Email,
		Send: func(sendCtx context.Context) error {
			return d.sender.SendFollowUpDigestEmail(sendCtx, agent.Email, agent.Name, window, rows)
		},
	})
	return nil
}

// HandleUserCreated enqueues the welcome email with the temporary password.
func (d *Dispatcher) HandleUserCreated(_ context.Context, event events.Event) error {
	created, ok := event.(events.UserCreated)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if created.Email == "" {
		return nil
	}

	signInURL := d.baseURL + "/sign-in"

	d.queue.Enqueue(Job{
		Kind:      "welcome",
		Recipient: created.Email,
		Send: func(sendCtx context.Context) error {
			return d.sender.SendWelcomeEmail(sendCtx, created.Email, created.Name, created.TempPassword, signInURL)
		},
	})
	return nil
}

func (d *Dispatcher) leadURL(leadID uuid.UUID) string {
	return d.baseURL + "/leads/" + leadID.String()
}
