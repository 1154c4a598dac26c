package authx

import "time"

// AuthorizationRecord is the provider-sourced snapshot of what a user may
// do. Providers replace records wholesale on each lookup; the record itself
// is never mutated in place.
type AuthorizationRecord struct {
	UserID      string
	Roles       []string
	Permissions []string
	Attributes  map[string]any
	ExpiresAt   *time.Time
	Resource    string
	Action      string
}

// EmptyRecord returns the terminal "no authorization" record for a user.
// Unknown users get this instead of an error.
func EmptyRecord(userID string) *AuthorizationRecord {
	return &AuthorizationRecord{
		UserID:      userID,
		Roles:       []string{},
		Permissions: []string{},
		Attributes:  map[string]any{},
	}
}

// IsValid reports whether the record has not expired. Records without an
// expiry never expire.
func (r *AuthorizationRecord) IsValid() bool {
	return r.ExpiresAt == nil || r.ExpiresAt.After(time.Now())
}

// HasRole reports membership in the record's role list.
func (r *AuthorizationRecord) HasRole(role string) bool {
	return contains(r.Roles, role)
}

// HasPermission reports membership in the record's permission list.
func (r *AuthorizationRecord) HasPermission(permission string) bool {
	return contains(r.Permissions, permission)
}

// GetAttribute returns the attribute cast to T, reporting false when absent
// or of a different type.
func GetAttribute[T any](r *AuthorizationRecord, key string) (T, bool) {
	var zero T
	if r == nil || r.Attributes == nil {
		return zero, false
	}
	v, ok := r.Attributes[key]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func cloneRecord(r *AuthorizationRecord) *AuthorizationRecord {
	if r == nil {
		return nil
	}
	out := &AuthorizationRecord{
		UserID:      r.UserID,
		Roles:       append([]string(nil), r.Roles...),
		Permissions: append([]string(nil), r.Permissions...),
		Resource:    r.Resource,
		Action:      r.Action,
	}
	if r.Attributes != nil {
		out.Attributes = make(map[string]any, len(r.Attributes))
		for k, v := range r.Attributes {
			out.Attributes[k] = v
		}
	}
	if r.ExpiresAt != nil {
		expires := *r.ExpiresAt
		out.ExpiresAt = &expires
	}
	return out
}
