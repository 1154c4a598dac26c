package authx

import (
	"context"
	"sort"
	"testing"
)

func adminEvaluation() *Evaluation {
	identity := NewIdentity(ClaimsMap{
		ClaimSubject: "admin123",
		ClaimRoles:   []string{"user"},
	})
	record := &AuthorizationRecord{
		UserID:      "admin123",
		Roles:       []string{"admin", "manager"},
		Permissions: []string{"user:create", "user:delete"},
		Attributes:  map[string]any{"department": "platform"},
	}
	return NewEvaluation(identity, record)
}

func TestEvaluation_MergesBothSources(t *testing.T) {
	eval := adminEvaluation()

	roles := eval.AllRoles()
	sort.Strings(roles)
	want := []string{"admin", "manager", "user"}
	if len(roles) != len(want) {
		t.Fatalf("expected %v, got %v", want, roles)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, roles)
		}
	}

	// Either source suffices.
	if !eval.HasRole("user") {
		t.Fatal("token-sourced role missing")
	}
	if !eval.HasRole("admin") {
		t.Fatal("provider-sourced role missing")
	}
	if eval.HasRole("editor") {
		t.Fatal("unexpected role granted")
	}
	if !eval.HasPermission("user:create") {
		t.Fatal("provider-sourced permission missing")
	}
}

func TestEvaluation_UnionIsSuperset(t *testing.T) {
	eval := adminEvaluation()
	all := eval.AllRoles()
	for _, source := range [][]string{eval.TokenRoles(), eval.ProviderRoles()} {
		for _, role := range source {
			if !contains(all, role) {
				t.Fatalf("union missing %q", role)
			}
		}
	}
}

func TestEvaluation_UnionDeduplicates(t *testing.T) {
	identity := NewIdentity(ClaimsMap{
		ClaimSubject: "user-1",
		ClaimRoles:   []string{"admin", "admin"},
	})
	record := &AuthorizationRecord{UserID: "user-1", Roles: []string{"admin"}}
	eval := NewEvaluation(identity, record)

	if roles := eval.AllRoles(); len(roles) != 1 || roles[0] != "admin" {
		t.Fatalf("expected deduplicated union, got %v", roles)
	}
}

func TestEvaluation_VacuousQuantifiers(t *testing.T) {
	eval := adminEvaluation()

	if eval.HasAnyRole(nil) {
		t.Fatal("any over empty set must be false")
	}
	if eval.HasAnyRole([]string{}) {
		t.Fatal("any over empty set must be false")
	}
	if !eval.HasAllRoles(nil) {
		t.Fatal("all over empty set must be true")
	}
	if !eval.HasAllRoles([]string{}) {
		t.Fatal("all over empty set must be true")
	}
	if eval.HasAnyPermission(nil) {
		t.Fatal("any over empty set must be false")
	}
	if !eval.HasAllPermissions(nil) {
		t.Fatal("all over empty set must be true")
	}
}

func TestEvaluation_AnyAllSemantics(t *testing.T) {
	eval := adminEvaluation()

	if !eval.HasAnyRole([]string{"editor", "admin"}) {
		t.Fatal("expected any-match on admin")
	}
	if eval.HasAllRoles([]string{"admin", "editor"}) {
		t.Fatal("expected all-match to fail on editor")
	}
	if !eval.HasAllRoles([]string{"admin", "user"}) {
		t.Fatal("expected all-match across sources")
	}
	if !eval.HasAllPermissions([]string{"user:create", "user:delete"}) {
		t.Fatal("expected all permissions held")
	}
	if eval.HasAnyPermission([]string{"billing:read"}) {
		t.Fatal("unexpected permission granted")
	}
}

func TestEvaluation_MissingRolesClaimIsEmpty(t *testing.T) {
	identity := NewIdentity(ClaimsMap{ClaimSubject: "user-1"})
	eval := NewEvaluation(identity, EmptyRecord("user-1"))

	if roles := eval.TokenRoles(); len(roles) != 0 {
		t.Fatalf("expected empty roles, got %v", roles)
	}
	if len(eval.AllRoles()) != 0 {
		t.Fatalf("expected no roles at all, got %v", eval.AllRoles())
	}
	if eval.HasRole("admin") {
		t.Fatal("no source grants admin")
	}
}

func TestEvaluation_Attribute(t *testing.T) {
	eval := adminEvaluation()

	if v, ok := eval.Attribute("department"); !ok || v.(string) != "platform" {
		t.Fatalf("unexpected attribute: %v %t", v, ok)
	}
	if _, ok := eval.Attribute("missing"); ok {
		t.Fatal("expected attribute miss")
	}

	if dep, ok := GetAttribute[string](eval.Record, "department"); !ok || dep != "platform" {
		t.Fatalf("unexpected typed attribute: %q %t", dep, ok)
	}
	if _, ok := GetAttribute[int](eval.Record, "department"); ok {
		t.Fatal("expected typed miss on mismatched attribute type")
	}
}

func TestEvaluation_NilInputs(t *testing.T) {
	eval := NewEvaluation(nil, nil)
	if eval.UserID() != "" {
		t.Fatalf("expected empty user id, got %q", eval.UserID())
	}
	if eval.HasRole("admin") {
		t.Fatal("empty evaluation grants nothing")
	}
	if !eval.HasAllRoles(nil) {
		t.Fatal("vacuous all still holds")
	}
}

func TestCallerEvaluationContext(t *testing.T) {
	eval := adminEvaluation()
	ctx := BindCallerEvaluation(context.Background(), CallerEvaluation{Evaluation: eval})

	got, ok := CallerEvaluationFromContext(ctx)
	if !ok {
		t.Fatal("expected caller evaluation in context")
	}
	if got.Evaluation.UserID() != "admin123" {
		t.Fatalf("unexpected user id: %s", got.Evaluation.UserID())
	}

	if _, ok := CallerEvaluationFromContext(context.Background()); ok {
		t.Fatal("expected no caller evaluation in fresh context")
	}
}

func TestDevBypassIdentity(t *testing.T) {
	caller := DefaultDevBypassIdentity().ToCallerEvaluation()
	if !caller.DevBypass {
		t.Fatal("expected dev bypass flag")
	}
	if caller.Evaluation.UserID() != "dev-bypass" {
		t.Fatalf("unexpected user id: %s", caller.Evaluation.UserID())
	}
	if !caller.Evaluation.HasRole("admin") {
		t.Fatal("expected synthetic admin role")
	}
}
