package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"kronus_crm_backend/internal/auth"
	"kronus_crm_backend/internal/events"
	"kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/internal/leads/transport"
	"kronus_crm_backend/platform/apperr"
	"kronus_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	leads      map[uuid.UUID]repository.Lead
	activities []repository.Activity
	documents  map[uuid.UUID]repository.Document
	failAudit  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:     make(map[uuid.UUID]repository.Lead),
		documents: make(map[uuid.UUID]repository.Document),
	}
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	lead := repository.Lead{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		Phone:        params.Phone,
		Property:     params.Property,
		Source:       params.Source,
		Status:       params.Status,
		Priority:     params.Priority,
		Value:        params.Value,
		FollowUpDate: params.FollowUpDate,
		CreatedByID:  params.CreatedByID,
		AssignedToID: params.AssignedToID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	if params.Name != nil {
		lead.Name = *params.Name
	}
	if params.ClearEmail {
		lead.Email = nil
	} else if params.Email != nil {
		lead.Email = params.Email
	}
	if params.Phone != nil {
		lead.Phone = *params.Phone
	}
	if params.ClearProperty {
		lead.Property = nil
	} else if params.Property != nil {
		lead.Property = params.Property
	}
	if params.Source != nil {
		lead.Source = *params.Source
	}
	if params.Status != nil {
		lead.Status = *params.Status
	}
	if params.Priority != nil {
		lead.Priority = *params.Priority
	}
	if params.ClearValue {
		lead.Value = nil
	} else if params.Value != nil {
		lead.Value = params.Value
	}
	if params.ClearFollowUpDate {
		lead.FollowUpDate = nil
	} else if params.FollowUpDate != nil {
		lead.FollowUpDate = params.FollowUpDate
	}
	if params.ClearAssignedTo {
		lead.AssignedToID = nil
	} else if params.AssignedToID != nil {
		lead.AssignedToID = params.AssignedToID
	}
	lead.UpdatedAt = time.Now()
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListLeadsParams) ([]repository.Lead, int, error) {
	leads := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		leads = append(leads, lead)
	}
	return leads, len(leads), nil
}

func (f *fakeStore) GetStats(_ context.Context, _ auth.LeadScope) (repository.Stats, error) {
	return repository.Stats{}, nil
}

func (f *fakeStore) CreateActivity(_ context.Context, params repository.CreateActivityParams) (repository.Activity, error) {
	if f.failAudit {
		return repository.Activity{}, context.DeadlineExceeded
	}
	activity := repository.Activity{
		ID:          uuid.New(),
		LeadID:      params.LeadID,
		UserID:      params.UserID,
		Type:        params.Type,
		Title:       params.Title,
		Description: params.Description,
		CreatedAt:   time.Now(),
	}
	f.activities = append(f.activities, activity)
	return activity, nil
}

func (f *fakeStore) ListActivities(_ context.Context, leadID uuid.UUID, _ int) ([]repository.Activity, error) {
	out := make([]repository.Activity, 0)
	for _, activity := range f.activities {
		if activity.LeadID == leadID {
			out = append(out, activity)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateDocument(_ context.Context, params repository.CreateDocumentParams) (repository.Document, error) {
	doc := repository.Document{
		ID:        uuid.New(),
		LeadID:    params.LeadID,
		Name:      params.Name,
		URL:       params.URL,
		Type:      params.Type,
		Size:      params.Size,
		CreatedAt: time.Now(),
	}
	f.documents[doc.ID] = doc
	return doc, nil
}

func (f *fakeStore) GetDocument(_ context.Context, id uuid.UUID) (repository.Document, error) {
	doc, ok := f.documents[id]
	if !ok {
		return repository.Document{}, repository.ErrDocumentNotFound
	}
	return doc, nil
}

func (f *fakeStore) ListDocuments(_ context.Context, leadID uuid.UUID) ([]repository.Document, error) {
	out := make([]repository.Document, 0)
	for _, doc := range f.documents {
		if doc.LeadID == leadID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteDocument(_ context.Context, id uuid.UUID) error {
	if _, ok := f.documents[id]; !ok {
		return repository.ErrDocumentNotFound
	}
	delete(f.documents, id)
	return nil
}

// fakeUsers resolves user profiles from a fixed map.
type fakeUsers struct {
	profiles map[uuid.UUID]auth.Profile
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (auth.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return auth.Profile{}, repository.ErrNotFound
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

// fakeBus records published events synchronously.
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
func (f *fakeBus) Subscribe(_ string, _ events.Handler) {}

func (f *fakeBus) assignedEvents() []events.LeadAssigned {
	out := make([]events.LeadAssigned, 0)
	for _, event := range f.published {
		if assigned, ok := event.(events.LeadAssigned); ok {
			out = append(out, assigned)
		}
	}
	return out
}

type fixture struct {
	svc   *Service
	store *fakeStore
	users *fakeUsers
	bus   *fakeBus
}

func newFixture() *fixture {
	store := newFakeStore()
	users := &fakeUsers{profiles: make(map[uuid.UUID]auth.Profile)}
	bus := &fakeBus{}
	svc := New(store, users, bus, logger.New("test"))
	return &fixture{svc: svc, store: store, users: users, bus: bus}
}

func (fx *fixture) addUser(name string) uuid.UUID {
	id := uuid.New()
	fx.users.profiles[id] = auth.Profile{ID: id, Name: name, Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"}
	return id
}

func (fx *fixture) seedLead(createdBy uuid.UUID, assignedTo *uuid.UUID) repository.Lead {
	lead, _ := fx.store.Create(context.Background(), repository.CreateLeadParams{
		Name:         "Ravi Sharma",
		Phone:        "+919876543210",
		Source:       "WEBSITE",
		Status:       "NEW",
		Priority:     "MEDIUM",
		CreatedByID:  createdBy,
		AssignedToID: assignedTo,
	})
	return lead
}

func adminActor(id uuid.UUID) Actor {
	return Actor{ID: id, Roles: []string{auth.RoleAdmin}}
}

func salesActor(id uuid.UUID) Actor {
	return Actor{ID: id, Roles: []string{auth.RoleSalesman}}
}

func setStr(v string) transport.OptionalString {
	return transport.OptionalString{Value: &v, Set: true}
}

func TestUpdateStatusChangeWritesSingleSystemEntry(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	lead := fx.seedLead(admin, nil)

	_, err := fx.svc.Update(context.Background(), adminActor(admin), lead.ID, transport.UpdateLeadRequest{
		Status: setStr("WON"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(fx.store.activities) != 1 {
		t.Fatalf("expected exactly one activity, got %d", len(fx.store.activities))
	}
	entry := fx.store.activities[0]
	if entry.Title != repository.ActivityTitleSystemChange {
		t.Errorf("title = %q, want %q", entry.Title, repository.ActivityTitleSystemChange)
	}
	if entry.Description != `Status changed from "NEW" to "WON"` {
		t.Errorf("description = %q", entry.Description)
	}
}

func TestUpdateNoopWritesNoSystemEntry(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	lead := fx.seedLead(admin, nil)

	_, err := fx.svc.Update(context.Background(), adminActor(admin), lead.ID, transport.UpdateLeadRequest{
		Status: setStr("NEW"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(fx.store.activities) != 0 {
		t.Fatalf("no-op update should not produce audit noise, got %d entries", len(fx.store.activities))
	}
}

func TestUpdateNoteIsRecordedIndependentlyOfFieldChanges(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	lead := fx.seedLead(admin, nil)

	_, err := fx.svc.Update(context.Background(), adminActor(admin), lead.ID, transport.UpdateLeadRequest{
		Note: "spoke on the phone, call back Friday",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(fx.store.activities) != 1 {
		t.Fatalf("expected one note entry, got %d", len(fx.store.activities))
	}
	if fx.store.activities[0].Title != repository.ActivityTitleNote {
		t.Errorf("title = %q, want %q", fx.store.activities[0].Title, repository.ActivityTitleNote)
	}
}

func TestUpdateChangeAndNoteProduceTwoOrderedEntries(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	lead := fx.seedLead(admin, nil)

	_, err := fx.svc.Update(context.Background(), adminActor(admin), lead.ID, transport.UpdateLeadRequest{
		Priority: setStr("HIGH"),
		Note:     "pushing for a site visit",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(fx.store.activities) != 2 {
		t.Fatalf("expected two entries, got %d", len(fx.store.activities))
	}
	if fx.store.activities[0].Title != repository.ActivityTitleSystemChange {
		t.Errorf("first entry should be the system change, got %q", fx.store.activities[0].Title)
	}
	if fx.store.activities[1].Title != repository.ActivityTitleNote {
		t.Errorf("second entry should be the note, got %q", fx.store.activities[1].Title)
	}
}

func TestUpdateReassignmentEmitsNameAndEvent(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	agentA := fx.addUser("Arjun Rao")
	agentB := fx.addUser("Priya Nair")
	lead := fx.seedLead(admin, &agentA)

	_, err := fx.svc.Update(context.Background(), adminActor(admin), lead.ID, transport.UpdateLeadRequest{
		AssignedToID: transport.OptionalUUID{Value: &agentB, Set: true},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(fx.store.activities) != 1 {
		t.Fatalf("expected one activity, got %d", len(fx.store.activities))
	}
	if !strings.Contains(fx.store.activities[0].Description, "Assigned to Priya Nair") {
		t.Errorf("description = %q, want assignment by display name", fx.store.activities[0].Description)
	}

	assigned := fx.bus.assignedEvents()
	if len(assigned) != 1 {
		t.Fatalf("expected exactly one assignment event, got %d", len(assigned))
	}
	if assigned[0].NewAgent == nil || *assigned[0].NewAgent != agentB {
		t.Errorf("event NewAgent = %v, want %s", assigned[0].NewAgent, agentB)
	}
	if assigned[0].PreviousAgent == nil || *assigned[0].PreviousAgent != agentA {
		t.Errorf("event PreviousAgent = %v, want %s", assigned[0].PreviousAgent, agentA)
	}
}

func TestUpdateSameAssigneeDoesNotNotify(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	agent := fx.addUser("Arjun Rao")
	lead := fx.seedLead(admin, &agent)

	_, err := fx.svc.Update(context.Background(), adminActor(admin), lead.ID, transport.UpdateLeadRequest{
		AssignedToID: transport.OptionalUUID{Value: &agent, Set: true},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(fx.bus.assignedEvents()) != 0 {
		t.Fatal("assigning to the same agent must not publish an event")
	}
	if len(fx.store.activities) != 0 {
		t.Fatal("assigning to the same agent is a no-op, no audit entry expected")
	}
}

func TestUpdateExplicitNullAssigneeIsRejected(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	lead := fx.seedLead(admin, nil)

	_, err := fx.svc.Update(context.Background(), adminActor(admin), lead.ID, transport.UpdateLeadRequest{
		AssignedToID: transport.OptionalUUID{Set: true},
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnassignRecordsLineAndNeverNotifies(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	agent := fx.addUser("Arjun Rao")
	lead := fx.seedLead(admin, &agent)

	updated, err := fx.svc.Unassign(context.Background(), adminActor(admin), lead.ID)
	if err != nil {
		t.Fatalf("unassign failed: %v", err)
	}
	if updated.AssignedToID != nil {
		t.Fatal("assignee should be cleared")
	}

	if len(fx.store.activities) != 1 || fx.store.activities[0].Description != "Lead unassigned" {
		t.Fatalf("expected single 'Lead unassigned' entry, got %+v", fx.store.activities)
	}
	if len(fx.bus.assignedEvents()) != 0 {
		t.Fatal("unassign must never publish an assignment event")
	}
}

func TestAuditWriteFailureDoesNotFailUpdate(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	lead := fx.seedLead(admin, nil)
	fx.store.failAudit = true

	updated, err := fx.svc.Update(context.Background(), adminActor(admin), lead.ID, transport.UpdateLeadRequest{
		Status: setStr("CONTACTED"),
	})
	if err != nil {
		t.Fatalf("update must succeed despite audit failure, got %v", err)
	}
	if updated.Status != "CONTACTED" {
		t.Errorf("status = %q, want CONTACTED", updated.Status)
	}
}

func TestScopeForbiddenIsNotNotFound(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	outsider := fx.addUser("Vikram Singh")
	lead := fx.seedLead(admin, nil)

	_, err := fx.svc.Get(context.Background(), salesActor(outsider), lead.ID)
	if apperr.GetKind(err) != apperr.KindForbidden {
		t.Fatalf("out-of-scope access should be forbidden, got %v", err)
	}

	_, err = fx.svc.Get(context.Background(), salesActor(outsider), uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("missing lead should be not found, got %v", err)
	}
}

func TestScopeCreatorAndAssigneeCanAccess(t *testing.T) {
	fx := newFixture()
	creator := fx.addUser("Vikram Singh")
	assignee := fx.addUser("Priya Nair")
	lead := fx.seedLead(creator, &assignee)

	if _, err := fx.svc.Get(context.Background(), salesActor(creator), lead.ID); err != nil {
		t.Fatalf("creator should see the lead: %v", err)
	}
	if _, err := fx.svc.Get(context.Background(), salesActor(assignee), lead.ID); err != nil {
		t.Fatalf("assignee should see the lead: %v", err)
	}
}

func TestCloseRequiresReasonAndRecordsBoth(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	lead := fx.seedLead(admin, nil)

	_, err := fx.svc.Close(context.Background(), adminActor(admin), lead.ID, transport.CloseLeadRequest{
		Status: "LOST", Reason: "  ",
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("blank reason should be rejected, got %v", err)
	}

	updated, err := fx.svc.Close(context.Background(), adminActor(admin), lead.ID, transport.CloseLeadRequest{
		Status: "LOST", Reason: "price too high",
	})
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if updated.Status != "LOST" {
		t.Errorf("status = %q, want LOST", updated.Status)
	}

	if len(fx.store.activities) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(fx.store.activities))
	}
	description := fx.store.activities[0].Description
	if !strings.Contains(description, `"LOST"`) || !strings.Contains(description, "price too high") {
		t.Errorf("close entry should carry status and reason, got %q", description)
	}
}

func TestReopenRequiresClosedLeadAndReason(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	lead := fx.seedLead(admin, nil)

	_, err := fx.svc.Reopen(context.Background(), adminActor(admin), lead.ID, transport.ReopenLeadRequest{Reason: "mistake"})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("reopening an active lead should fail validation, got %v", err)
	}

	if _, err := fx.svc.Close(context.Background(), adminActor(admin), lead.ID, transport.CloseLeadRequest{Status: "WON", Reason: "signed"}); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	_, err = fx.svc.Reopen(context.Background(), adminActor(admin), lead.ID, transport.ReopenLeadRequest{Reason: ""})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("reopen without reason should fail, got %v", err)
	}

	updated, err := fx.svc.Reopen(context.Background(), adminActor(admin), lead.ID, transport.ReopenLeadRequest{Reason: "deal fell through"})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if updated.Status != "NEW" {
		t.Errorf("status = %q, want NEW", updated.Status)
	}

	last := fx.store.activities[len(fx.store.activities)-1]
	if !strings.Contains(last.Description, "deal fell through") {
		t.Errorf("reopen entry should carry the reason, got %q", last.Description)
	}
}

func TestCreateWithAssigneePublishesAssignment(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	agent := fx.addUser("Priya Nair")

	_, err := fx.svc.Create(context.Background(), adminActor(admin), transport.CreateLeadRequest{
		Name:         "Meera Joshi",
		Phone:        "+919812345678",
		AssignedToID: transport.OptionalUUID{Value: &agent, Set: true},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	assigned := fx.bus.assignedEvents()
	if len(assigned) != 1 {
		t.Fatalf("expected one assignment event, got %d", len(assigned))
	}
	if assigned[0].PreviousAgent != nil {
		t.Error("create has no previous agent")
	}

	if len(fx.store.activities) != 1 || fx.store.activities[0].Title != repository.ActivityTitleLeadCreated {
		t.Fatalf("expected a 'Lead Created' entry, got %+v", fx.store.activities)
	}
}

func TestUpdateDocumentsAppendAttachmentLine(t *testing.T) {
	fx := newFixture()
	admin := fx.addUser("Asha Verma")
	lead := fx.seedLead(admin, nil)

	_, err := fx.svc.Update(context.Background(), adminActor(admin), lead.ID, transport.UpdateLeadRequest{
		Documents: []transport.NewDocument{
			{Name: "floorplan.pdf", URL: "https://files.example.com/floorplan.pdf", Type: "other", Size: 1024},
			{Name: "site.jpg", URL: "https://files.example.com/site.jpg", Type: "image", Size: 2048},
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(fx.store.activities) != 1 {
		t.Fatalf("expected one system entry, got %d", len(fx.store.activities))
	}
	if got := fx.store.activities[0].Description; got != "Added 2 attachment(s): floorplan.pdf, site.jpg" {
		t.Errorf("description = %q", got)
	}
}
