package authx

import (
	"context"
	"errors"
	"log/slog"
)

// Service sequences token validation, authorization fetch, and evaluation
// construction. Authorize is the only operation that surfaces errors; every
// convenience predicate fails closed, so a caller using the sugar surface
// can never be crashed by a malformed token or a broken backend.
//
// The service holds no state of its own; each call is independent.
type Service struct {
	validator TokenValidator
	provider  AuthorizationProvider
	logger    *slog.Logger
}

// NewService wires a validator and a provider into an orchestration service.
// A nil logger falls back to slog.Default.
func NewService(validator TokenValidator, provider AuthorizationProvider, logger *slog.Logger) (*Service, error) {
	if validator == nil {
		return nil, errors.New("token validator is required")
	}
	if provider == nil {
		return nil, errors.New("authorization provider is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{validator: validator, provider: provider, logger: logger}, nil
}

// Authorize validates the token, fetches authorization data for the
// resulting identity, and returns the combined evaluation. Validation and
// provider failures propagate to the caller; this is the one truth-telling
// entry point.
func (s *Service) Authorize(ctx context.Context, token string, opts ...QueryOption) (*Evaluation, error) {
	identity, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	record, err := s.provider.GetAuthorization(ctx, identity.UserID, opts...)
	if err != nil {
		return nil, err
	}
	return NewEvaluation(identity, record), nil
}

// HasRole reports whether the token's holder has the role; false on any
// error.
func (s *Service) HasRole(ctx context.Context, token, role string, opts ...QueryOption) bool {
	eval, err := s.Authorize(ctx, token, opts...)
	if err != nil {
		s.denied(ctx, "has_role", err)
		return false
	}
	return eval.HasRole(role)
}

// HasPermission reports whether the token's holder has the permission; false
// on any error.
func (s *Service) HasPermission(ctx context.Context, token, permission string, opts ...QueryOption) bool {
	eval, err := s.Authorize(ctx, token, opts...)
	if err != nil {
		s.denied(ctx, "has_permission", err)
		return false
	}
	return eval.HasPermission(permission)
}

// HasAnyRole reports whether at least one role is held; false on any error
// and on an empty query list.
func (s *Service) HasAnyRole(ctx context.Context, token string, roles []string, opts ...QueryOption) bool {
	eval, err := s.Authorize(ctx, token, opts...)
	if err != nil {
		s.denied(ctx, "has_any_role", err)
		return false
	}
	return eval.HasAnyRole(roles)
}

// HasAllRoles reports whether every role is held; false on any error, true
// on an empty query list.
func (s *Service) HasAllRoles(ctx context.Context, token string, roles []string, opts ...QueryOption) bool {
	eval, err := s.Authorize(ctx, token, opts...)
	if err != nil {
		s.denied(ctx, "has_all_roles", err)
		return false
	}
	return eval.HasAllRoles(roles)
}

// HasAnyPermission reports whether at least one permission is held; false on
// any error.
func (s *Service) HasAnyPermission(ctx context.Context, token string, permissions []string, opts ...QueryOption) bool {
	eval, err := s.Authorize(ctx, token, opts...)
	if err != nil {
		s.denied(ctx, "has_any_permission", err)
		return false
	}
	return eval.HasAnyPermission(permissions)
}

// HasAllPermissions reports whether every permission is held; false on any
// error.
func (s *Service) HasAllPermissions(ctx context.Context, token string, permissions []string, opts ...QueryOption) bool {
	eval, err := s.Authorize(ctx, token, opts...)
	if err != nil {
		s.denied(ctx, "has_all_permissions", err)
		return false
	}
	return eval.HasAllPermissions(permissions)
}

// CheckRequest describes a comprehensive authorization gate. Empty criteria
// are skipped entirely rather than evaluated as vacuous "any" checks, so a
// caller passing no required roles is not blocked by role checks.
type CheckRequest struct {
	RequiredRoles         []string
	RequiredPermissions   []string
	RequireAllRoles       bool
	RequireAllPermissions bool
}

// CheckAuthorization evaluates the role criterion AND the permission
// criterion; false on any internal error.
func (s *Service) CheckAuthorization(ctx context.Context, token string, req CheckRequest, opts ...QueryOption) bool {
	eval, err := s.Authorize(ctx, token, opts...)
	if err != nil {
		s.denied(ctx, "check_authorization", err)
		return false
	}

	if len(req.RequiredRoles) > 0 {
		ok := false
		if req.RequireAllRoles {
			ok = eval.HasAllRoles(req.RequiredRoles)
		} else {
			ok = eval.HasAnyRole(req.RequiredRoles)
		}
		if !ok {
			s.logger.Debug("authorization check denied",
				"event", "authz_roles_missing",
				"user_id", eval.UserID(),
				"require_all", req.RequireAllRoles,
			)
			return false
		}
	}

	if len(req.RequiredPermissions) > 0 {
		ok := false
		if req.RequireAllPermissions {
			ok = eval.HasAllPermissions(req.RequiredPermissions)
		} else {
			ok = eval.HasAnyPermission(req.RequiredPermissions)
		}
		if !ok {
			s.logger.Debug("authorization check denied",
				"event", "authz_permissions_missing",
				"user_id", eval.UserID(),
				"require_all", req.RequireAllPermissions,
			)
			return false
		}
	}

	return true
}

// CheckRoles validates the token once and answers each queried role against
// one provider snapshot. On any failure every queried role maps to false; no
// error and no partial result escapes.
func (s *Service) CheckRoles(ctx context.Context, token string, roles []string, opts ...QueryOption) map[string]bool {
	identity, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		s.denied(ctx, "check_roles", err)
		return allFalse(roles)
	}
	results, err := s.provider.CheckRoles(ctx, identity.UserID, roles, opts...)
	if err != nil {
		s.denied(ctx, "check_roles", err)
		return allFalse(roles)
	}
	return results
}

// CheckPermissions is the permission counterpart of CheckRoles.
func (s *Service) CheckPermissions(ctx context.Context, token string, permissions []string, opts ...QueryOption) map[string]bool {
	identity, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		s.denied(ctx, "check_permissions", err)
		return allFalse(permissions)
	}
	results, err := s.provider.CheckPermissions(ctx, identity.UserID, permissions, opts...)
	if err != nil {
		s.denied(ctx, "check_permissions", err)
		return allFalse(permissions)
	}
	return results
}

// UserID returns the token's user id, or "" when validation fails.
func (s *Service) UserID(ctx context.Context, token string) string {
	identity, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		s.denied(ctx, "user_id", err)
		return ""
	}
	return identity.UserID
}

// EffectiveRoles returns the provider's resource-scoped role list, or nil on
// any failure.
func (s *Service) EffectiveRoles(ctx context.Context, token, resource string, opts ...QueryOption) []string {
	identity, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		s.denied(ctx, "effective_roles", err)
		return nil
	}
	roles, err := s.provider.GetEffectiveRoles(ctx, identity.UserID, resource, opts...)
	if err != nil {
		s.denied(ctx, "effective_roles", err)
		return nil
	}
	return roles
}

// EffectivePermissions returns the provider's resource-scoped permission
// list, or nil on any failure.
func (s *Service) EffectivePermissions(ctx context.Context, token, resource string, opts ...QueryOption) []string {
	identity, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		s.denied(ctx, "effective_permissions", err)
		return nil
	}
	permissions, err := s.provider.GetEffectivePermissions(ctx, identity.UserID, resource, opts...)
	if err != nil {
		s.denied(ctx, "effective_permissions", err)
		return nil
	}
	return permissions
}

func (s *Service) denied(_ context.Context, operation string, err error) {
	s.logger.Debug("authorization failed closed",
		"event", "authz_failed_closed",
		"operation", operation,
		"error", err.Error(),
	)
}

func allFalse(names []string) map[string]bool {
	results := make(map[string]bool, len(names))
	for _, name := range names {
		results[name] = false
	}
	return results
}
