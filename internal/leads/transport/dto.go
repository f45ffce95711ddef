package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type NewDocument struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	URL  string `json:"url" validate:"required,max=1024"`
	Type string `json:"type" validate:"required,oneof=image other"`
	Size int64  `json:"size" validate:"min=0"`
}

type CreateLeadRequest struct {
	Name         string        `json:"name" validate:"required,min=1,max=150"`
	Email        string        `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string        `json:"phone" validate:"required,min=5,max=20"`
	Property     string        `json:"property,omitempty" validate:"max=255"`
	Source       string        `json:"source,omitempty" validate:"omitempty,oneof=WEBSITE REFERRAL INSTAGRAM YOUTUBE EMAIL WHATSAPP NINETY_NINE_ACRES MAGICBRICKS OLX COLD_OUTREACH"`
	Status       string        `json:"status,omitempty" validate:"omitempty,oneof=NEW CONTACTED INTERESTED NOT_INTERESTED SITE_VISIT NEGOTIATION DOCUMENTATION WON LOST"`
	Priority     string        `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Value        *float64      `json:"value,omitempty" validate:"omitempty,min=0"`
	FollowUpDate OptionalTime  `json:"followUpDate,omitempty" validate:"-"`
	AssignedToID OptionalUUID  `json:"assignedToId,omitempty" validate:"-"`
	Documents    []NewDocument `json:"documents,omitempty" validate:"omitempty,dive"`
}

type UpdateLeadRequest struct {
	Name         OptionalString `json:"name,omitempty" validate:"-"`
	Email        OptionalString `json:"email,omitempty" validate:"-"`
	Phone        OptionalString `json:"phone,omitempty" validate:"-"`
	Property     OptionalString `json:"property,omitempty" validate:"-"`
	Source       OptionalString `json:"source,omitempty" validate:"-"`
	Status       OptionalString `json:"status,omitempty" validate:"-"`
	Priority     OptionalString `json:"priority,omitempty" validate:"-"`
	Value        OptionalFloat  `json:"value,omitempty" validate:"-"`
	FollowUpDate OptionalTime   `json:"followUpDate,omitempty" validate:"-"`
	AssignedToID OptionalUUID   `json:"assignedToId,omitempty" validate:"-"`
	Note         string         `json:"note,omitempty" validate:"max=2000"`
	Documents    []NewDocument  `json:"documents,omitempty" validate:"omitempty,dive"`
}

type AssignLeadRequest struct {
	AssignedToID uuid.UUID `json:"assignedToId" validate:"required"`
}

type CloseLeadRequest struct {
	Status string `json:"status" validate:"required,oneof=WON LOST"`
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

type ReopenLeadRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

type AddNoteRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type ListLeadsRequest struct {
	Status       string `form:"status" validate:"omitempty,oneof=NEW CONTACTED INTERESTED NOT_INTERESTED SITE_VISIT NEGOTIATION DOCUMENTATION WON LOST"`
	Priority     string `form:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Source       string `form:"source" validate:"omitempty,oneof=WEBSITE REFERRAL INSTAGRAM YOUTUBE EMAIL WHATSAPP NINETY_NINE_ACRES MAGICBRICKS OLX COLD_OUTREACH"`
	AssignedToID string `form:"assignedToId" validate:"omitempty,uuid"`
	Search       string `form:"search" validate:"max=100"`
	Page         int    `form:"page" validate:"min=0"`
	PageSize     int    `form:"pageSize" validate:"min=0,max=100"`
	SortBy       string `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt name status priority value followUpDate"`
	SortOrder    string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// Response DTOs

type LeadResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        *string    `json:"email,omitempty"`
	Phone        string     `json:"phone"`
	Property     *string    `json:"property,omitempty"`
	Source       string     `json:"source"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	Value        *float64   `json:"value,omitempty"`
	FollowUpDate *time.Time `json:"followUpDate,omitempty"`
	CreatedByID  uuid.UUID  `json:"createdById"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type ActivityResponse struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"leadId"`
	UserID      uuid.UUID `json:"userId"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type DocumentResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type LeadDetailResponse struct {
	LeadResponse
	Activities []ActivityResponse `json:"activities"`
	Documents  []DocumentResponse `json:"documents"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type LeadStatsResponse struct {
	TotalLeads int64            `json:"totalLeads"`
	TotalValue float64          `json:"totalValue"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
	BySource   map[string]int64 `json:"bySource"`
}
