// Package service implements the lead lifecycle: scoped access, change
// diffing, audit recording and assignment events. The authoritative write is
// the lead row; audit entries and notifications are best-effort adjuncts.
package service

import (
	"context"
	"errors"

	"kronus_crm_backend/internal/auth"
	"kronus_crm_backend/internal/events"
	"kronus_crm_backend/internal/leads/diff"
	"kronus_crm_backend/internal/leads/domain"
	"kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/internal/leads/transport"
	"kronus_crm_backend/platform/apperr"
	"kronus_crm_backend/platform/logger"
	"kronus_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// recentActivityLimit is the number of audit entries returned with a lead.
const recentActivityLimit = 20

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params repository.ListLeadsParams) ([]repository.Lead, int, error)
	GetStats(ctx context.Context, scope auth.LeadScope) (repository.Stats, error)

	CreateActivity(ctx context.Context, params repository.CreateActivityParams) (repository.Activity, error)
	ListActivities(ctx context.Context, leadID uuid.UUID, limit int) ([]repository.Activity, error)

	CreateDocument(ctx context.Context, params repository.CreateDocumentParams) (repository.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (repository.Document, error)
	ListDocuments(ctx context.Context, leadID uuid.UUID) ([]repository.Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

// Actor identifies the authenticated caller performing an operation.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

// Scope resolves the actor's lead visibility.
func (a Actor) Scope() auth.LeadScope {
	return auth.ResolveLeadScope(a.ID, a.Roles)
}

type Service struct {
	store Store
	users auth.UserProvider
	bus   events.Bus
	log   *logger.Logger
}

func New(store Store, users auth.UserProvider, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, users: users, bus: bus, log: log}
}

// authorize loads the lead and enforces the actor's scope. Out-of-scope
// access on an existing lead is Forbidden, not NotFound.
func (s *Service) authorize(ctx context.Context, actor Actor, leadID uuid.UUID) (repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, apperr.Internal("failed to load lead", err)
	}

	scope := actor.Scope()
	if scope.All {
		return lead, nil
	}
	if lead.CreatedByID == scope.UserID {
		return lead, nil
	}
	if lead.AssignedToID != nil && *lead.AssignedToID == scope.UserID {
		return lead, nil
	}
	return repository.Lead{}, apperr.Forbidden("you do not have permission to access this lead")
}

func (s *Service) Create(ctx context.Context, actor Actor, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	params := repository.CreateLeadParams{
		Name:        req.Name,
		Phone:       phone.NormalizeE164(req.Phone),
		Source:      string(domain.SourceWebsite),
		Status:      string(domain.StatusNew),
		Priority:    string(domain.PriorityMedium),
		Value:       req.Value,
		CreatedByID: actor.ID,
	}
	if req.Email != "" {
		params.Email = &req.Email
	}
	if req.Property != "" {
		params.Property = &req.Property
	}
	if req.Source != "" {
		params.Source = req.Source
	}
	if req.Status != "" {
		params.Status = req.Status
	}
	if req.Priority != "" {
		params.Priority = req.Priority
	}
	if req.FollowUpDate.Set && req.FollowUpDate.Value != nil {
		params.FollowUpDate = req.FollowUpDate.Value
	}

	if req.AssignedToID.Set && req.AssignedToID.Value != nil {
		if _, err := s.users.GetUserByID(ctx, *req.AssignedToID.Value); err != nil {
			return transport.LeadResponse{}, apperr.BadRequest("assigned user not found")
		}
		params.AssignedToID = req.AssignedToID.Value
	}

	lead, err := s.store.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, apperr.Internal("failed to create lead", err)
	}

	docNames := s.persistDocuments(ctx, lead.ID, req.Documents)

	description := "Lead created by " + s.displayName(ctx, actor.ID)
	if len(docNames) > 0 {
		description += "\n" + diff.AttachmentsAdded(docNames)
	}
	s.recordActivity(ctx, lead.ID, actor.ID, repository.ActivityTitleLeadCreated, description)

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		LeadName:        lead.Name,
		Source:          lead.Source,
		AssignedAgentID: lead.AssignedToID,
		CreatedByID:     actor.ID,
	})
	if lead.AssignedToID != nil {
		s.publishAssigned(ctx, lead, nil, actor.ID)
	}

	return toLeadResponse(lead), nil
}

func (s *Service) Get(ctx context.Context, actor Actor, leadID uuid.UUID) (transport.LeadDetailResponse, error) {
	lead, err := s.authorize(ctx, actor, leadID)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	activities, err := s.store.ListActivities(ctx, leadID, recentActivityLimit)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Internal("failed to load activities", err)
	}
	documents, err := s.store.ListDocuments(ctx, leadID)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Internal("failed to load documents", err)
	}

	return toLeadDetailResponse(lead, activities, documents), nil
}

func (s *Service) List(ctx context.Context, actor Actor, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.ListLeadsParams{
		Scope:     actor.Scope(),
		Search:    req.Search,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}
	if req.Status != "" {
		params.Status = &req.Status
	}
	if req.Priority != "" {
		params.Priority = &req.Priority
	}
	if req.Source != "" {
		params.Source = &req.Source
	}
	if req.AssignedToID != "" {
		assigneeID, err := uuid.Parse(req.AssignedToID)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation("invalid assignedToId filter")
		}
		params.AssignedToID = &assigneeID
	}

	leads, total, err := s.store.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, apperr.Internal("failed to list leads", err)
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = toLeadResponse(lead)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) Update(ctx context.Context, actor Actor, leadID uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.authorize(ctx, actor, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if err := validateUpdate(req); err != nil {
		return transport.LeadResponse{}, err
	}

	var newAssigneeName string
	assigneeChanged := false
	if req.AssignedToID.Set {
		if req.AssignedToID.Value == nil {
			return transport.LeadResponse{}, apperr.Validation("assignee cannot be cleared here; use the unassign operation")
		}
		if lead.AssignedToID == nil || *lead.AssignedToID != *req.AssignedToID.Value {
			profile, err := s.users.GetUserByID(ctx, *req.AssignedToID.Value)
			if err != nil {
				return transport.LeadResponse{}, apperr.BadRequest("assigned user not found")
			}
			newAssigneeName = profile.Name
			assigneeChanged = true
		}
	}

	// The diff is computed against the snapshot we read; concurrent writers
	// race with last-write-wins semantics at the storage layer.
	changes := diff.Compute(snapshotOf(lead), toProposed(req))

	updated, err := s.store.Update(ctx, leadID, toUpdateParams(req))
	if err != nil {
		return transport.LeadResponse{}, apperr.Internal("failed to update lead", err)
	}

	docNames := s.persistDocuments(ctx, leadID, req.Documents)

	lines := diff.Descriptions(changes)
	if assigneeChanged {
		lines = append(lines, diff.Assigned(newAssigneeName))
	}
	if len(docNames) > 0 {
		lines = append(lines, diff.AttachmentsAdded(docNames))
	}
	if len(lines) > 0 {
		s.recordActivity(ctx, leadID, actor.ID, repository.ActivityTitleSystemChange, joinLines(lines))
	}
	if note := trimmed(req.Note); note != "" {
		s.recordActivity(ctx, leadID, actor.ID, repository.ActivityTitleNote, note)
	}

	if assigneeChanged {
		s.publishAssigned(ctx, updated, lead.AssignedToID, actor.ID)
	}
	if updated.Status != lead.Status {
		s.publishStatusChanged(ctx, leadID, lead.Status, updated.Status, actor.ID)
	}

	return toLeadResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, actor Actor, leadID uuid.UUID) error {
	if _, err := s.authorize(ctx, actor, leadID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, leadID); err != nil {
		return apperr.Internal("failed to delete lead", err)
	}
	return nil
}

func (s *Service) Stats(ctx context.Context, actor Actor) (transport.LeadStatsResponse, error) {
	stats, err := s.store.GetStats(ctx, actor.Scope())
	if err != nil {
		return transport.LeadStatsResponse{}, apperr.Internal("failed to compute lead stats", err)
	}
	return transport.LeadStatsResponse{
		TotalLeads: stats.TotalLeads,
		TotalValue: stats.TotalValue,
		ByStatus:   stats.ByStatus,
		ByPriority: stats.ByPriority,
		BySource:   stats.BySource,
	}, nil
}

// recordActivity writes one audit entry. Failures are logged and swallowed:
// the lead row has already committed and stays authoritative.
func (s *Service) recordActivity(ctx context.Context, leadID, userID uuid.UUID, title, description string) {
	_, err := s.store.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:      leadID,
		UserID:      userID,
		Type:        repository.ActivityTypeNote,
		Title:       title,
		Description: description,
	})
	if err != nil {
		s.log.AuditWriteError(leadID.String(), err)
	}
}

// persistDocuments stores document metadata rows and returns the names that
// were actually persisted, so audit lines never reference failed writes.
func (s *Service) persistDocuments(ctx context.Context, leadID uuid.UUID, docs []transport.NewDocument) []string {
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		created, err := s.store.CreateDocument(ctx, repository.CreateDocumentParams{
			LeadID: leadID,
			Name:   doc.Name,
			URL:    doc.URL,
			Type:   doc.Type,
			Size:   doc.Size,
		})
		if err != nil {
			s.log.AuditWriteError(leadID.String(), err)
			continue
		}
		names = append(names, created.Name)
	}
	return names
}

func (s *Service) publishAssigned(ctx context.Context, lead repository.Lead, previous *uuid.UUID, actorID uuid.UUID) {
	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		LeadName:      lead.Name,
		PreviousAgent: previous,
		NewAgent:      lead.AssignedToID,
		AssignedByID:  actorID,
	})
}

func (s *Service) publishStatusChanged(ctx context.Context, leadID uuid.UUID, oldStatus, newStatus string, actorID uuid.UUID) {
	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ActorID:   actorID,
	})
}

func (s *Service) displayName(ctx context.Context, userID uuid.UUID) string {
	profile, err := s.users.GetUserByID(ctx, userID)
	if err != nil || profile.Name == "" {
		return "Unknown user"
	}
	return profile.Name
}

func validateUpdate(req transport.UpdateLeadRequest) error {
	requireValue := func(set bool, value *string, field string) error {
		if set && (value == nil || trimmed(*value) == "") {
			return apperr.Validation(field + " cannot be empty")
		}
		return nil
	}
	if err := requireValue(req.Name.Set, req.Name.Value, "name"); err != nil {
		return err
	}
	if err := requireValue(req.Phone.Set, req.Phone.Value, "phone"); err != nil {
		return err
	}
	if req.Source.Set {
		if req.Source.Value == nil || !domain.Source(*req.Source.Value).IsValid() {
			return apperr.Validation("invalid source")
		}
	}
	if req.Status.Set {
		if req.Status.Value == nil || !domain.Status(*req.Status.Value).IsValid() {
			return apperr.Validation("invalid status")
		}
	}
	if req.Priority.Set {
		if req.Priority.Value == nil || !domain.Priority(*req.Priority.Value).IsValid() {
			return apperr.Validation("invalid priority")
		}
	}
	return nil
}
