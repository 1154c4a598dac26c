package authx

import (
	"context"
	"sync"
)

// MemoryProvider is the in-memory reference AuthorizationProvider. It keeps
// one record per user id with last-write-wins updates and is intended for
// tests and local development wiring; real deployments plug a database or
// REST backend into the same interface.
type MemoryProvider struct {
	mu      sync.RWMutex
	records map[string]*AuthorizationRecord
}

// NewMemoryProvider builds an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		records: make(map[string]*AuthorizationRecord),
	}
}

// SetUserData stores the record for its user id, replacing any previous one.
func (p *MemoryProvider) SetUserData(record *AuthorizationRecord) {
	if record == nil || record.UserID == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[record.UserID] = cloneRecord(record)
}

// RemoveUserData deletes the record for the user id, if any.
func (p *MemoryProvider) RemoveUserData(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.records, userID)
}

// Clear drops every stored record.
func (p *MemoryProvider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = make(map[string]*AuthorizationRecord)
}

// Len reports how many user records are stored.
func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.records)
}

// GetAuthorization returns the stored record for the user, or the empty
// record when the user is unknown. Reads are idempotent.
func (p *MemoryProvider) GetAuthorization(_ context.Context, userID string, _ ...QueryOption) (*AuthorizationRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if record, ok := p.records[userID]; ok {
		return cloneRecord(record), nil
	}
	return EmptyRecord(userID), nil
}

// HasRole reports whether the user's record carries the role.
func (p *MemoryProvider) HasRole(ctx context.Context, userID, role string, opts ...QueryOption) (bool, error) {
	record, err := p.GetAuthorization(ctx, userID, opts...)
	if err != nil {
		return false, err
	}
	return record.HasRole(role), nil
}

// HasPermission reports whether the user's record carries the permission.
func (p *MemoryProvider) HasPermission(ctx context.Context, userID, permission string, opts ...QueryOption) (bool, error) {
	record, err := p.GetAuthorization(ctx, userID, opts...)
	if err != nil {
		return false, err
	}
	return record.HasPermission(permission), nil
}

// HasAnyRole reports whether at least one queried role is held.
func (p *MemoryProvider) HasAnyRole(ctx context.Context, userID string, roles []string, opts ...QueryOption) (bool, error) {
	record, err := p.GetAuthorization(ctx, userID, opts...)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if record.HasRole(role) {
			return true, nil
		}
	}
	return false, nil
}

// HasAllRoles reports whether every queried role is held. An empty query
// list is vacuously true.
func (p *MemoryProvider) HasAllRoles(ctx context.Context, userID string, roles []string, opts ...QueryOption) (bool, error) {
	record, err := p.GetAuthorization(ctx, userID, opts...)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if !record.HasRole(role) {
			return false, nil
		}
	}
	return true, nil
}

// HasAnyPermission reports whether at least one queried permission is held.
func (p *MemoryProvider) HasAnyPermission(ctx context.Context, userID string, permissions []string, opts ...QueryOption) (bool, error) {
	record, err := p.GetAuthorization(ctx, userID, opts...)
	if err != nil {
		return false, err
	}
	for _, permission := range permissions {
		if record.HasPermission(permission) {
			return true, nil
		}
	}
	return false, nil
}

// HasAllPermissions reports whether every queried permission is held.
func (p *MemoryProvider) HasAllPermissions(ctx context.Context, userID string, permissions []string, opts ...QueryOption) (bool, error) {
	record, err := p.GetAuthorization(ctx, userID, opts...)
	if err != nil {
		return false, err
	}
	for _, permission := range permissions {
		if !record.HasPermission(permission) {
			return false, nil
		}
	}
	return true, nil
}

// CheckRoles answers each queried role against one fetched record.
func (p *MemoryProvider) CheckRoles(ctx context.Context, userID string, roles []string, opts ...QueryOption) (map[string]bool, error) {
	record, err := p.GetAuthorization(ctx, userID, opts...)
	if err != nil {
		return nil, err
	}
	results := make(map[string]bool, len(roles))
	for _, role := range roles {
		results[role] = record.HasRole(role)
	}
	return results, nil
}

// CheckPermissions answers each queried permission against one fetched
// record.
func (p *MemoryProvider) CheckPermissions(ctx context.Context, userID string, permissions []string, opts ...QueryOption) (map[string]bool, error) {
	record, err := p.GetAuthorization(ctx, userID, opts...)
	if err != nil {
		return nil, err
	}
	results := make(map[string]bool, len(permissions))
	for _, permission := range permissions {
		results[permission] = record.HasPermission(permission)
	}
	return results, nil
}

// GetEffectiveRoles returns the user's full role list. The reference store
// has no per-resource partitioning, so the resource parameter is accepted
// but not used for filtering.
func (p *MemoryProvider) GetEffectiveRoles(ctx context.Context, userID, resource string, opts ...QueryOption) ([]string, error) {
	record, err := p.GetAuthorization(ctx, userID, append(opts, WithResource(resource))...)
	if err != nil {
		return nil, err
	}
	return record.Roles, nil
}

// GetEffectivePermissions returns the user's full permission list, with the
// same resource-parameter caveat as GetEffectiveRoles.
func (p *MemoryProvider) GetEffectivePermissions(ctx context.Context, userID, resource string, opts ...QueryOption) ([]string, error) {
	record, err := p.GetAuthorization(ctx, userID, append(opts, WithResource(resource))...)
	if err != nil {
		return nil, err
	}
	return record.Permissions, nil
}

var _ AuthorizationProvider = (*MemoryProvider)(nil)
