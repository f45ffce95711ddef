package service

import (
	"context"
	"errors"
	"fmt"

	"kronus_crm_backend/internal/leads/diff"
	"kronus_crm_backend/internal/leads/domain"
	"kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/internal/leads/transport"
	"kronus_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// Assign hands the lead to a different agent. The assignment event fires
// only when the assignee materially changes.
func (s *Service) Assign(ctx context.Context, actor Actor, leadID uuid.UUID, assigneeID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.authorize(ctx, actor, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	profile, err := s.users.GetUserByID(ctx, assigneeID)
	if err != nil {
		return transport.LeadResponse{}, apperr.BadRequest("assigned user not found")
	}

	updated, err := s.store.Update(ctx, leadID, repository.UpdateLeadParams{AssignedToID: &assigneeID})
	if err != nil {
		return transport.LeadResponse{}, apperr.Internal("failed to assign lead", err)
	}

	s.recordActivity(ctx, leadID, actor.ID, repository.ActivityTitleLeadAssigned, diff.Assigned(profile.Name))

	if lead.AssignedToID == nil || *lead.AssignedToID != assigneeID {
		s.publishAssigned(ctx, updated, lead.AssignedToID, actor.ID)
	}

	return toLeadResponse(updated), nil
}

// Unassign clears the assignee. This is the only path that empties the
// assignment; it records "Lead unassigned" and never notifies anyone.
func (s *Service) Unassign(ctx context.Context, actor Actor, leadID uuid.UUID) (transport.LeadResponse, error) {
	if _, err := s.authorize(ctx, actor, leadID); err != nil {
		return transport.LeadResponse{}, err
	}

	updated, err := s.store.Update(ctx, leadID, repository.UpdateLeadParams{ClearAssignedTo: true})
	if err != nil {
		return transport.LeadResponse{}, apperr.Internal("failed to unassign lead", err)
	}

	s.recordActivity(ctx, leadID, actor.ID, repository.ActivityTitleLeadAssigned, diff.Unassigned)

	return toLeadResponse(updated), nil
}

// Close moves the lead to a terminal status. The reason is required and is
// recorded in the same audit entry as the status change.
func (s *Service) Close(ctx context.Context, actor Actor, leadID uuid.UUID, req transport.CloseLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.authorize(ctx, actor, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	status := domain.Status(req.Status)
	if !status.IsTerminal() {
		return transport.LeadResponse{}, apperr.Validation("close status must be WON or LOST")
	}
	reason := trimmed(req.Reason)
	if reason == "" {
		return transport.LeadResponse{}, apperr.Validation("close reason is required")
	}

	newStatus := string(status)
	updated, err := s.store.Update(ctx, leadID, repository.UpdateLeadParams{Status: &newStatus})
	if err != nil {
		return transport.LeadResponse{}, apperr.Internal("failed to close lead", err)
	}

	description := fmt.Sprintf("Status changed from %q to %q\nReason: %s", lead.Status, newStatus, reason)
	s.recordActivity(ctx, leadID, actor.ID, repository.ActivityTitleSystemChange, description)
	s.publishStatusChanged(ctx, leadID, lead.Status, newStatus, actor.ID)

	return toLeadResponse(updated), nil
}

// Reopen reverts a closed lead to the active default status. A reason is
// required; reopening is an audited first-class transition.
func (s *Service) Reopen(ctx context.Context, actor Actor, leadID uuid.UUID, req transport.ReopenLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.authorize(ctx, actor, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	if !domain.Status(lead.Status).IsTerminal() {
		return transport.LeadResponse{}, apperr.Validation("lead is not closed")
	}
	reason := trimmed(req.Reason)
	if reason == "" {
		return transport.LeadResponse{}, apperr.Validation("reopen reason is required")
	}

	newStatus := string(domain.StatusNew)
	updated, err := s.store.Update(ctx, leadID, repository.UpdateLeadParams{Status: &newStatus})
	if err != nil {
		return transport.LeadResponse{}, apperr.Internal("failed to reopen lead", err)
	}

	description := fmt.Sprintf("Status changed from %q to %q\nReopen reason: %s", lead.Status, newStatus, reason)
	s.recordActivity(ctx, leadID, actor.ID, repository.ActivityTitleSystemChange, description)
	s.publishStatusChanged(ctx, leadID, lead.Status, newStatus, actor.ID)

	return toLeadResponse(updated), nil
}

// AddNote records a user-authored note. Notes are always written when
// non-empty, independent of any field changes.
func (s *Service) AddNote(ctx context.Context, actor Actor, leadID uuid.UUID, content string) (transport.ActivityResponse, error) {
	if _, err := s.authorize(ctx, actor, leadID); err != nil {
		return transport.ActivityResponse{}, err
	}

	note := trimmed(content)
	if note == "" {
		return transport.ActivityResponse{}, apperr.Validation("note content is required")
	}

	activity, err := s.store.CreateActivity(ctx, repository.CreateActivityParams{
		LeadID:      leadID,
		UserID:      actor.ID,
		Type:        repository.ActivityTypeNote,
		Title:       repository.ActivityTitleNote,
		Description: note,
	})
	if err != nil {
		return transport.ActivityResponse{}, apperr.Internal("failed to record note", err)
	}

	return toActivityResponse(activity), nil
}

// ListActivities returns the lead's audit trail, newest first.
func (s *Service) ListActivities(ctx context.Context, actor Actor, leadID uuid.UUID, limit int) ([]transport.ActivityResponse, error) {
	if _, err := s.authorize(ctx, actor, leadID); err != nil {
		return nil, err
	}
	if limit < 1 || limit > 100 {
		limit = recentActivityLimit
	}

	activities, err := s.store.ListActivities(ctx, leadID, limit)
	if err != nil {
		return nil, apperr.Internal("failed to load activities", err)
	}

	items := make([]transport.ActivityResponse, len(activities))
	for i, activity := range activities {
		items[i] = toActivityResponse(activity)
	}
	return items, nil
}

// AddDocument persists an uploaded document's metadata and records the
// attachment in the audit trail.
func (s *Service) AddDocument(ctx context.Context, actor Actor, leadID uuid.UUID, doc transport.NewDocument) (transport.DocumentResponse, error) {
	if _, err := s.authorize(ctx, actor, leadID); err != nil {
		return transport.DocumentResponse{}, err
	}

	created, err := s.store.CreateDocument(ctx, repository.CreateDocumentParams{
		LeadID: leadID,
		Name:   doc.Name,
		URL:    doc.URL,
		Type:   doc.Type,
		Size:   doc.Size,
	})
	if err != nil {
		return transport.DocumentResponse{}, apperr.Internal("failed to save document", err)
	}

	s.recordActivity(ctx, leadID, actor.ID, repository.ActivityTitleSystemChange, diff.AttachmentsAdded([]string{created.Name}))

	return toDocumentResponse(created), nil
}

// GetDocument loads a single document, enforcing that it belongs to the lead.
func (s *Service) GetDocument(ctx context.Context, actor Actor, leadID, documentID uuid.UUID) (transport.DocumentResponse, error) {
	if _, err := s.authorize(ctx, actor, leadID); err != nil {
		return transport.DocumentResponse{}, err
	}

	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return transport.DocumentResponse{}, apperr.NotFound("document not found")
		}
		return transport.DocumentResponse{}, apperr.Internal("failed to load document", err)
	}
	if doc.LeadID != leadID {
		return transport.DocumentResponse{}, apperr.NotFound("document not found")
	}

	return toDocumentResponse(doc), nil
}

// RemoveDocument deletes a document independently of its lead and writes
// its own audit entry.
func (s *Service) RemoveDocument(ctx context.Context, actor Actor, leadID, documentID uuid.UUID) (transport.DocumentResponse, error) {
	if _, err := s.authorize(ctx, actor, leadID); err != nil {
		return transport.DocumentResponse{}, err
	}

	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return transport.DocumentResponse{}, apperr.NotFound("document not found")
		}
		return transport.DocumentResponse{}, apperr.Internal("failed to load document", err)
	}
	if doc.LeadID != leadID {
		return transport.DocumentResponse{}, apperr.NotFound("document not found")
	}

	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return transport.DocumentResponse{}, apperr.Internal("failed to delete document", err)
	}

	s.recordActivity(ctx, leadID, actor.ID, repository.ActivityTitleDocumentRemoved, "Removed attachment: "+doc.Name)

	return toDocumentResponse(doc), nil
}
