package service

import (
	"strings"
	"time"

	"kronus_crm_backend/internal/leads/diff"
	"kronus_crm_backend/internal/leads/repository"
	"kronus_crm_backend/internal/leads/transport"
	"kronus_crm_backend/platform/phone"
)

func trimmed(value string) string {
	return strings.TrimSpace(value)
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func snapshotOf(lead repository.Lead) diff.Snapshot {
	return diff.Snapshot{
		Name:         lead.Name,
		Email:        lead.Email,
		Phone:        lead.Phone,
		Property:     lead.Property,
		Source:       lead.Source,
		Status:       lead.Status,
		Priority:     lead.Priority,
		Value:        lead.Value,
		FollowUpDate: lead.FollowUpDate,
	}
}

func optString(o transport.OptionalString) diff.Opt[string] {
	return diff.Opt[string]{Value: o.Value, Set: o.Set}
}

func toProposed(req transport.UpdateLeadRequest) diff.Proposed {
	proposed := diff.Proposed{
		Name:         optString(req.Name),
		Email:        optString(req.Email),
		Property:     optString(req.Property),
		Source:       optString(req.Source),
		Status:       optString(req.Status),
		Priority:     optString(req.Priority),
		Value:        diff.Opt[float64]{Value: req.Value.Value, Set: req.Value.Set},
		FollowUpDate: diff.Opt[time.Time]{Value: req.FollowUpDate.Value, Set: req.FollowUpDate.Set},
	}
	if req.Phone.Set && req.Phone.Value != nil {
		normalized := phone.NormalizeE164(*req.Phone.Value)
		proposed.Phone = diff.Opt[string]{Value: &normalized, Set: true}
	}
	return proposed
}

func toUpdateParams(req transport.UpdateLeadRequest) repository.UpdateLeadParams {
	params := repository.UpdateLeadParams{}

	if req.Name.Set && req.Name.Value != nil {
		params.Name = req.Name.Value
	}
	if req.Email.Set {
		if req.Email.Value == nil || trimmed(*req.Email.Value) == "" {
			params.ClearEmail = true
		} else {
			params.Email = req.Email.Value
		}
	}
	if req.Phone.Set && req.Phone.Value != nil {
		normalized := phone.NormalizeE164(*req.Phone.Value)
		params.Phone = &normalized
	}
	if req.Property.Set {
		if req.Property.Value == nil || trimmed(*req.Property.Value) == "" {
			params.ClearProperty = true
		} else {
			params.Property = req.Property.Value
		}
	}
	if req.Source.Set && req.Source.Value != nil {
		params.Source = req.Source.Value
	}
	if req.Status.Set && req.Status.Value != nil {
		params.Status = req.Status.Value
	}
	if req.Priority.Set && req.Priority.Value != nil {
		params.Priority = req.Priority.Value
	}
	if req.Value.Set {
		if req.Value.Value == nil {
			params.ClearValue = true
		} else {
			params.Value = req.Value.Value
		}
	}
	if req.FollowUpDate.Set {
		if req.FollowUpDate.Value == nil {
			params.ClearFollowUpDate = true
		} else {
			params.FollowUpDate = req.FollowUpDate.Value
		}
	}
	if req.AssignedToID.Set && req.AssignedToID.Value != nil {
		params.AssignedToID = req.AssignedToID.Value
	}

	return params
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:           lead.ID,
		Name:         lead.Name,
		Email:        lead.Email,
		Phone:        lead.Phone,
		Property:     lead.Property,
		Source:       lead.Source,
		Status:       lead.Status,
		Priority:     lead.Priority,
		Value:        lead.Value,
		FollowUpDate: lead.FollowUpDate,
		CreatedByID:  lead.CreatedByID,
		AssignedToID: lead.AssignedToID,
		CreatedAt:    lead.CreatedAt,
		UpdatedAt:    lead.UpdatedAt,
	}
}

func toActivityResponse(activity repository.Activity) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:          activity.ID,
		LeadID:      activity.LeadID,
		UserID:      activity.UserID,
		Type:        activity.Type,
		Title:       activity.Title,
		Description: activity.Description,
		CreatedAt:   activity.CreatedAt,
	}
}

func toDocumentResponse(doc repository.Document) transport.DocumentResponse {
	return transport.DocumentResponse{
		ID:        doc.ID,
		LeadID:    doc.LeadID,
		Name:      doc.Name,
		URL:       doc.URL,
		Type:      doc.Type,
		Size:      doc.Size,
		CreatedAt: doc.CreatedAt,
	}
}

func toLeadDetailResponse(lead repository.Lead, activities []repository.Activity, documents []repository.Document) transport.LeadDetailResponse {
	activityItems := make([]transport.ActivityResponse, len(activities))
	for i, activity := range activities {
		activityItems[i] = toActivityResponse(activity)
	}
	documentItems := make([]transport.DocumentResponse, len(documents))
	for i, doc := range documents {
		documentItems[i] = toDocumentResponse(doc)
	}
	return transport.LeadDetailResponse{
		LeadResponse: toLeadResponse(lead),
		Activities:   activityItems,
		Documents:    documentItems,
	}
}
