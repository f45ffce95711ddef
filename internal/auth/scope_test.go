package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestResolveLeadScopeElevatedRolesSeeEverything(t *testing.T) {
	userID := uuid.New()

	for _, role := range []string{RoleAdmin, RoleExecutive, RoleDirector, RoleManager} {
		scope := ResolveLeadScope(userID, []string{role})
		if !scope.All {
			t.Errorf("role %s: expected full scope", role)
		}
	}
}

func TestResolveLeadScopeSalesmanIsRestricted(t *testing.T) {
	userID := uuid.New()

	scope := ResolveLeadScope(userID, []string{RoleSalesman})
	if scope.All {
		t.Fatal("salesman should not get full scope")
	}
	if scope.UserID != userID {
		t.Fatalf("restricted scope should carry the actor's ID, got %s", scope.UserID)
	}
}

func TestResolveLeadScopeMixedRolesUseHighestPrivilege(t *testing.T) {
	userID := uuid.New()

	scope := ResolveLeadScope(userID, []string{RoleSalesman, RoleManager})
	if !scope.All {
		t.Fatal("any elevated role should grant full scope")
	}
}

func TestResolveLeadScopeNoRolesIsRestricted(t *testing.T) {
	userID := uuid.New()

	scope := ResolveLeadScope(userID, nil)
	if scope.All {
		t.Fatal("empty role set must fall back to restricted scope")
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range ValidRoles {
		if !IsValidRole(role) {
			t.Errorf("expected %s to be valid", role)
		}
	}
	if IsValidRole("SUPERUSER") {
		t.Error("unknown role should not validate")
	}
}
