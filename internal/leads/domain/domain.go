// Package domain defines the lead pipeline vocabulary: statuses, priorities
// and acquisition sources, plus the rules around terminal states.
package domain

// Status is a lead's pipeline stage.
type Status string

const (
	StatusNew           Status = "NEW"
	StatusContacted     Status = "CONTACTED"
	StatusInterested    Status = "INTERESTED"
	StatusNotInterested Status = "NOT_INTERESTED"
	StatusSiteVisit     Status = "SITE_VISIT"
	StatusNegotiation   Status = "NEGOTIATION"
	StatusDocumentation Status = "DOCUMENTATION"
	StatusWon           Status = "WON"
	StatusLost          Status = "LOST"
)

// Statuses lists every pipeline stage in funnel order.
var Statuses = []Status{
	StatusNew,
	StatusContacted,
	StatusInterested,
	StatusNotInterested,
	StatusSiteVisit,
	StatusNegotiation,
	StatusDocumentation,
	StatusWon,
	StatusLost,
}

// IsTerminal reports whether a status closes the lead. Terminal leads are
// excluded from follow-up sweeps; leaving a terminal status goes through the
// audited reopen flow, not a raw status edit.
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusLost
}

// IsValid reports whether s is a known pipeline stage.
func (s Status) IsValid() bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Priority is a lead's urgency tier.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Priorities lists every urgency tier.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	for _, priority := range Priorities {
		if p == priority {
			return true
		}
	}
	return false
}

// Source is the acquisition channel a lead arrived through.
type Source string

const (
	SourceWebsite        Source = "WEBSITE"
	SourceReferral       Source = "REFERRAL"
	SourceInstagram      Source = "INSTAGRAM"
	SourceYouTube        Source = "YOUTUBE"
	SourceEmail          Source = "EMAIL"
	SourceWhatsApp       Source = "WHATSAPP"
	SourceNinetyNineAcre Source = "NINETY_NINE_ACRES"
	SourceMagicBricks    Source = "MAGICBRICKS"
	SourceOLX            Source = "OLX"
	SourceColdOutreach   Source = "COLD_OUTREACH"
)

// Sources lists every acquisition channel.
var Sources = []Source{
	SourceWebsite,
	SourceReferral,
	SourceInstagram,
	SourceYouTube,
	SourceEmail,
	SourceWhatsApp,
	SourceNinetyNineAcre,
	SourceMagicBricks,
	SourceOLX,
	SourceColdOutreach,
}

// IsValid reports whether s is a known source.
func (s Source) IsValid() bool {
	for _, source := range Sources {
		if s == source {
			return true
		}
	}
	return false
}
