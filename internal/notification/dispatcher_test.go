package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"kronus_crm_backend/internal/auth"
	"kronus_crm_backend/internal/email"
	"kronus_crm_backend/internal/events"
	leadrepo "kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type sentAssignment struct {
	to, agent, lead, by, url string
}

type sentDigest struct {
	to, agent, window string
	leads             []email.DigestLead
}

type sentWelcome struct {
	to, name, password, url string
}

type fakeSender struct {
	mu          sync.Mutex
	assignments []sentAssignment
	digests     []sentDigest
	welcomes    []sentWelcome
}

func (f *fakeSender) SendAssignmentEmail(_ context.Context, toEmail, agentName, leadName, assignedBy, leadURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments = append(f.assignments, sentAssignment{to: toEmail, agent: agentName, lead: leadName, by: assignedBy, url: leadURL})
	return nil
}

func (f *fakeSender) SendFollowUpDigestEmail(_ context.Context, toEmail, agentName, window string, leads []email.DigestLead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.digests = append(f.digests, sentDigest{to: toEmail, agent: agentName, window: window, leads: leads})
	return nil
}

func (f *fakeSender) SendWelcomeEmail(_ context.Context, toEmail, userName, tempPassword, signInURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, sentWelcome{to: toEmail, name: userName, password: tempPassword, url: signInURL})
	return nil
}

type fakeUsers struct {
	profiles map[uuid.UUID]auth.Profile
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (auth.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return auth.Profile{}, leadrepo.ErrNotFound
	}
	return profile, nil
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]auth.Profile, error) {
	out := make(map[uuid.UUID]auth.Profile)
	for _, id := range ids {
		if profile, ok := f.profiles[id]; ok {
			out[id] = profile
		}
	}
	return out, nil
}

type fakeLeads struct {
	leads map[uuid.UUID]leadrepo.Lead
}

func (f *fakeLeads) GetByID(_ context.Context, id uuid.UUID) (leadrepo.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return leadrepo.Lead{}, leadrepo.ErrNotFound
	}
	return lead, nil
}

type dispatchFixture struct {
	dispatcher *Dispatcher
	queue      *Queue
	sender     *fakeSender
	users      *fakeUsers
	leads      *fakeLeads
}

func newDispatchFixture() *dispatchFixture {
	log := logger.New("test")
	queue := NewQueue(0, log)
	sender := &fakeSender{}
	users := &fakeUsers{profiles: make(map[uuid.UUID]auth.Profile)}
	leads := &fakeLeads{leads: make(map[uuid.UUID]leadrepo.Lead)}
	dispatcher := NewDispatcher(queue, sender, users, leads, "https://crm.example.com", log)
	return &dispatchFixture{dispatcher: dispatcher, queue: queue, sender: sender, users: users, leads: leads}
}

func (fx *dispatchFixture) addAgent(name, addr string) uuid.UUID {
	id := uuid.New()
	fx.users.profiles[id] = auth.Profile{ID: id, Name: name, Email: addr}
	return id
}

func TestAssignmentNotificationGoesToNewAgent(t *testing.T) {
	fx := newDispatchFixture()
	agent := fx.addAgent("Priya Nair", "priya@example.com")
	admin := fx.addAgent("Asha Verma", "asha@example.com")
	leadID := uuid.New()

	err := fx.dispatcher.HandleLeadAssigned(context.Background(), events.LeadAssigned{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       leadID,
		LeadName:     "Ravi Sharma",
		NewAgent:     &agent,
		AssignedByID: admin,
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	fx.queue.Wait()

	if len(fx.sender.assignments) != 1 {
		t.Fatalf("expected one assignment email, got %d", len(fx.sender.assignments))
	}
	sent := fx.sender.assignments[0]
	if sent.to != "priya@example.com" {
		t.Errorf("recipient = %q", sent.to)
	}
	if sent.by != "Asha Verma" {
		t.Errorf("assignedBy = %q", sent.by)
	}
	wantURL := "https://crm.example.com/leads/" + leadID.String()
	if sent.url != wantURL {
		t.Errorf("url = %q, want %q", sent.url, wantURL)
	}
}

func TestUnassignmentIsSilent(t *testing.T) {
	fx := newDispatchFixture()
	previous := fx.addAgent("Arjun Rao", "arjun@example.com")

	err := fx.dispatcher.HandleLeadAssigned(context.Background(), events.LeadAssigned{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        uuid.New(),
		LeadName:      "Ravi Sharma",
		PreviousAgent: &previous,
		NewAgent:      nil,
		AssignedByID:  previous,
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	fx.queue.Wait()

	if len(fx.sender.assignments) != 0 {
		t.Fatal("unassignment must not send email")
	}
}

func TestDigestBuildsOneEmailPerAgent(t *testing.T) {
	fx := newDispatchFixture()
	agent := fx.addAgent("Priya Nair", "priya@example.com")

	due := time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC)
	property := "12 Marine Drive, Mumbai"
	leadA := leadrepo.Lead{ID: uuid.New(), Name: "Beta Corp", Phone: "+919812345678", Status: "CONTACTED", Priority: "HIGH", FollowUpDate: &due}
	leadB := leadrepo.Lead{ID: uuid.New(), Name: "Alpha Estates", Phone: "+919876543210", Property: &property, Status: "NEGOTIATION", Priority: "URGENT", FollowUpDate: &due}
	fx.leads.leads[leadA.ID] = leadA
	fx.leads.leads[leadB.ID] = leadB
	missing := uuid.New()

	err := fx.dispatcher.HandleFollowUpDigestDue(context.Background(), events.FollowUpDigestDue{
		BaseEvent: events.NewBaseEvent(),
		AgentID:   agent,
		Window:    "today",
		Date:      due,
		LeadIDs:   []uuid.UUID{leadA.ID, leadB.ID, missing},
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	fx.queue.Wait()

	if len(fx.sender.digests) != 1 {
		t.Fatalf("expected one digest email, got %d", len(fx.sender.digests))
	}
	digest := fx.sender.digests[0]
	if digest.window != "today" {
		t.Errorf("window = %q", digest.window)
	}
	if len(digest.leads) != 2 {
		t.Fatalf("missing leads should be skipped, got %d rows", len(digest.leads))
	}
	if digest.leads[0].Name != "Alpha Estates" {
		t.Errorf("digest rows should be sorted by name, got %q first", digest.leads[0].Name)
	}
	if digest.leads[0].FollowUpDate != "Apr 2, 2026" {
		t.Errorf("follow-up date = %q", digest.leads[0].FollowUpDate)
	}
	if digest.leads[0].Property != property {
		t.Errorf("digest row should carry the property, got %q", digest.leads[0].Property)
	}
	if digest.leads[0].Phone != "+919876543210" {
		t.Errorf("digest row should carry the phone, got %q", digest.leads[0].Phone)
	}
	if digest.leads[1].Property != "" {
		t.Errorf("lead without property should render empty, got %q", digest.leads[1].Property)
	}
}

func TestWelcomeEmailCarriesTempPassword(t *testing.T) {
	fx := newDispatchFixture()

	err := fx.dispatcher.HandleUserCreated(context.Background(), events.UserCreated{
		BaseEvent:    events.NewBaseEvent(),
		UserID:       uuid.New(),
		Email:        "vikram@example.com",
		Name:         "Vikram Singh",
		TempPassword: "temp-pass-123",
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	fx.queue.Wait()

	if len(fx.sender.welcomes) != 1 {
		t.Fatalf("expected one welcome email, got %d", len(fx.sender.welcomes))
	}
	sent := fx.sender.welcomes[0]
	if sent.to != "vikram@example.com" || sent.name != "Vikram Singh" {
		t.Errorf("unexpected recipient %+v", sent)
	}
	if sent.password != "temp-pass-123" {
		t.Errorf("temp password = %q", sent.password)
	}
	if sent.url != "https://crm.example.com/sign-in" {
		t.Errorf("sign-in url = %q", sent.url)
	}
}

func TestEmptyDigestIsDropped(t *testing.T) {
	fx := newDispatchFixture()
	agent := fx.addAgent("Priya Nair", "priya@example.com")

	err := fx.dispatcher.HandleFollowUpDigestDue(context.Background(), events.FollowUpDigestDue{
		BaseEvent: events.NewBaseEvent(),
		AgentID:   agent,
		Window:    "tomorrow",
		LeadIDs:   nil,
	})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	fx.queue.Wait()

	if len(fx.sender.digests) != 0 {
		t.Fatal("empty digest must not send email")
	}
}
