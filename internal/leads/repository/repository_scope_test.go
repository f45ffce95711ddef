package repository

import (
	"strings"
	"testing"

	"kronus_crm_backend/internal/auth"

	"github.com/google/uuid"
)

func TestScopeConditionRestrictedCaller(t *testing.T) {
	userID := uuid.New()
	argIdx := 1

	cond, args := scopeCondition(auth.LeadScope{UserID: userID}, &argIdx)

	if cond != "(created_by_id = $1 OR assigned_to_id = $1)" {
		t.Fatalf("unexpected condition: %q", cond)
	}
	if len(args) != 1 || args[0] != userID {
		t.Fatalf("expected single userID arg, got %v", args)
	}
	if argIdx != 2 {
		t.Fatalf("argIdx should advance to 2, got %d", argIdx)
	}
}

func TestScopeConditionElevatedCallerHasNoPredicate(t *testing.T) {
	argIdx := 1

	cond, args := scopeCondition(auth.LeadScope{All: true}, &argIdx)

	if cond != "" || len(args) != 0 {
		t.Fatalf("elevated scope must not restrict, got cond=%q args=%v", cond, args)
	}
	if argIdx != 1 {
		t.Fatalf("argIdx must not advance for elevated scope, got %d", argIdx)
	}
}

func TestBuildLeadListWhereCombinesScopeAndFilters(t *testing.T) {
	userID := uuid.New()
	status := "CONTACTED"

	where, args := buildLeadListWhere(ListLeadsParams{
		Scope:  auth.LeadScope{UserID: userID},
		Status: &status,
		Search: "sharma",
	})

	lowered := strings.ToLower(where)
	for _, fragment := range []string{
		"(created_by_id = $1 or assigned_to_id = $1)",
		"status = $2",
		"ilike $3",
	} {
		if !strings.Contains(lowered, fragment) {
			t.Errorf("expected fragment %q in %q", fragment, where)
		}
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
	if args[2] != "%sharma%" {
		t.Errorf("search arg = %v, want wrapped pattern", args[2])
	}
}

func TestBuildLeadListWhereElevatedNoFilters(t *testing.T) {
	where, args := buildLeadListWhere(ListLeadsParams{Scope: auth.LeadScope{All: true}})

	if where != "" || len(args) != 0 {
		t.Fatalf("expected unrestricted query, got where=%q args=%v", where, args)
	}
}

func TestDueFollowUpsQueryExcludesTerminalStatuses(t *testing.T) {
	query := strings.ToLower(dueFollowUpsQuery)

	requiredFragments := []string{
		"follow_up_date >= $1",
		"follow_up_date < $2",
		"assigned_to_id is not null",
		"status not in ('won', 'lost')",
	}
	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Errorf("expected fragment %q in due follow-ups query", fragment)
		}
	}
}
