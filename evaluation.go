package authx

// Evaluation merges one validated Identity with one AuthorizationRecord into
// a queryable view for a single authorization decision. It borrows both
// inputs without owning them, performs no I/O, and is safe to query
// repeatedly without re-fetching.
//
// The constructor does not cross-check that the two inputs describe the same
// user; callers constructing evaluations by hand must guarantee that
// themselves. Service.Authorize always builds them consistently.
type Evaluation struct {
	Identity *Identity
	Record   *AuthorizationRecord
}

// NewEvaluation combines an identity and an authorization record.
func NewEvaluation(identity *Identity, record *AuthorizationRecord) *Evaluation {
	if identity == nil {
		identity = NewIdentity(ClaimsMap{})
	}
	if record == nil {
		record = EmptyRecord(identity.UserID)
	}
	return &Evaluation{Identity: identity, Record: record}
}

// UserID returns the identity's user id.
func (e *Evaluation) UserID() string {
	return e.Identity.UserID
}

// TokenRoles returns the roles carried by the token's "roles" claim, empty
// when the claim is absent or malformed.
func (e *Evaluation) TokenRoles() []string {
	return e.Identity.Roles()
}

// TokenPermissions returns the permissions carried by the token's
// "permissions" claim.
func (e *Evaluation) TokenPermissions() []string {
	return e.Identity.Permissions()
}

// ProviderRoles returns the roles from the authorization record.
func (e *Evaluation) ProviderRoles() []string {
	return e.Record.Roles
}

// ProviderPermissions returns the permissions from the authorization record.
func (e *Evaluation) ProviderPermissions() []string {
	return e.Record.Permissions
}

// AllRoles returns the set union of token and provider roles. Order is
// unspecified.
func (e *Evaluation) AllRoles() []string {
	return union(e.TokenRoles(), e.ProviderRoles())
}

// AllPermissions returns the set union of token and provider permissions.
// Order is unspecified.
func (e *Evaluation) AllPermissions() []string {
	return union(e.TokenPermissions(), e.ProviderPermissions())
}

// HasRole reports whether either source grants the role.
func (e *Evaluation) HasRole(role string) bool {
	return contains(e.TokenRoles(), role) || e.Record.HasRole(role)
}

// HasPermission reports whether either source grants the permission.
func (e *Evaluation) HasPermission(permission string) bool {
	return contains(e.TokenPermissions(), permission) || e.Record.HasPermission(permission)
}

// HasAnyRole reports whether at least one of the roles is granted. An empty
// query list yields false.
func (e *Evaluation) HasAnyRole(roles []string) bool {
	for _, role := range roles {
		if e.HasRole(role) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether every one of the roles is granted. An empty
// query list yields true.
func (e *Evaluation) HasAllRoles(roles []string) bool {
	for _, role := range roles {
		if !e.HasRole(role) {
			return false
		}
	}
	return true
}

// HasAnyPermission reports whether at least one of the permissions is
// granted. An empty query list yields false.
func (e *Evaluation) HasAnyPermission(permissions []string) bool {
	for _, permission := range permissions {
		if e.HasPermission(permission) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of the permissions is granted.
// An empty query list yields true.
func (e *Evaluation) HasAllPermissions(permissions []string) bool {
	for _, permission := range permissions {
		if !e.HasPermission(permission) {
			return false
		}
	}
	return true
}

// Attribute returns the named attribute from the authorization record.
func (e *Evaluation) Attribute(key string) (any, bool) {
	if e.Record.Attributes == nil {
		return nil, false
	}
	v, ok := e.Record.Attributes[key]
	return v, ok
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
