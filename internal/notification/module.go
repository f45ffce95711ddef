package notification

import (
	"time"

	"kronus_crm_backend/internal/auth"
	"kronus_crm_backend/internal/email"
	"kronus_crm_backend/internal/events"
	"kronus_crm_backend/platform/logger"
)

// Module wires the dispatcher and delivery queue to the event bus. It exposes
// no HTTP routes; it exists purely as an event consumer.
type Module struct {
	queue      *Queue
	dispatcher *Dispatcher
}

// NewModule creates the notification module and subscribes its handlers.
func NewModule(bus events.Bus, sender email.Sender, users auth.UserProvider, leads LeadReader, baseURL string, delay time.Duration, log *logger.Logger) *Module {
	queue := NewQueue(delay, log)
	dispatcher := NewDispatcher(queue, sender, users, leads, baseURL, log)

	bus.Subscribe(events.LeadAssigned{}.EventName(), events.HandlerFunc(dispatcher.HandleLeadAssigned))
	bus.Subscribe(events.FollowUpDigestDue{}.EventName(), events.HandlerFunc(dispatcher.HandleFollowUpDigestDue))
	bus.Subscribe(events.UserCreated{}.EventName(), events.HandlerFunc(dispatcher.HandleUserCreated))

	return &Module{queue: queue, dispatcher: dispatcher}
}

// Drain blocks until all queued deliveries have been attempted. Used during
// graceful shutdown.
func (m *Module) Drain() {
	m.queue.Wait()
}
