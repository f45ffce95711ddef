package auth

// Role names as stored on user records and embedded in access tokens.
const (
	RoleAdmin     = "ADMIN"
	RoleExecutive = "EXECUTIVE"
	RoleDirector  = "DIRECTOR"
	RoleManager   = "MANAGER"
	RoleSalesman  = "SALESMAN"
)

// elevatedRoles grant visibility over the whole lead book.
// SALESMAN is the base role and is restricted to its own leads.
var elevatedRoles = map[string]struct{}{
	RoleAdmin:     {},
	RoleExecutive: {},
	RoleDirector:  {},
	RoleManager:   {},
}

// ValidRoles lists every role the system accepts, in display order.
var ValidRoles = []string{RoleAdmin, RoleExecutive, RoleDirector, RoleManager, RoleSalesman}

// IsValidRole reports whether name is a known role.
func IsValidRole(name string) bool {
	for _, role := range ValidRoles {
		if role == name {
			return true
		}
	}
	return false
}

// IsElevated reports whether any of the given roles grants full lead visibility.
func IsElevated(roles []string) bool {
	for _, role := range roles {
		if _, ok := elevatedRoles[role]; ok {
			return true
		}
	}
	return false
}
