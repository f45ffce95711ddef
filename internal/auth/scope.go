package auth

import "github.com/google/uuid"

// LeadScope describes which leads an actor may see and act on.
// When All is true the actor sees the full book and UserID is ignored.
// Otherwise visibility is limited to leads the actor created or is assigned to.
type LeadScope struct {
	All    bool
	UserID uuid.UUID
}

// ResolveLeadScope derives the lead visibility scope from an actor's roles.
// The same scope governs reads and writes, so a restricted actor can never
// modify a lead it cannot list.
func ResolveLeadScope(userID uuid.UUID, roles []string) LeadScope {
	if IsElevated(roles) {
		return LeadScope{All: true}
	}
	return LeadScope{UserID: userID}
}
