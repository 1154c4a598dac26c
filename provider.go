package authx

import "context"

// QueryParams carries optional scoping for an authorization lookup.
type QueryParams struct {
	Resource string
	Action   string
	Context  map[string]any
}

// QueryOption customizes a single authorization lookup.
type QueryOption func(*QueryParams)

// WithResource scopes the lookup to a resource.
func WithResource(resource string) QueryOption {
	return func(p *QueryParams) {
		p.Resource = resource
	}
}

// WithAction scopes the lookup to an action.
func WithAction(action string) QueryOption {
	return func(p *QueryParams) {
		p.Action = action
	}
}

// WithContext attaches an arbitrary key-value bag of policy hints.
func WithContext(values map[string]any) QueryOption {
	return func(p *QueryParams) {
		p.Context = values
	}
}

func applyQueryOptions(opts []QueryOption) QueryParams {
	var params QueryParams
	for _, opt := range opts {
		opt(&params)
	}
	return params
}

// AuthorizationProvider supplies per-user authorization data. Backends may
// involve I/O (database, REST, GraphQL); every method therefore takes a
// context. Unknown users yield an empty record, never an error.
type AuthorizationProvider interface {
	// GetAuthorization fetches the authorization snapshot for a user.
	GetAuthorization(ctx context.Context, userID string, opts ...QueryOption) (*AuthorizationRecord, error)

	// HasRole reports whether the user's record carries the role.
	HasRole(ctx context.Context, userID, role string, opts ...QueryOption) (bool, error)

	// HasPermission reports whether the user's record carries the permission.
	HasPermission(ctx context.Context, userID, permission string, opts ...QueryOption) (bool, error)

	// HasAnyRole reports whether at least one of the roles is held.
	// An empty query list yields false.
	HasAnyRole(ctx context.Context, userID string, roles []string, opts ...QueryOption) (bool, error)

	// HasAllRoles reports whether every one of the roles is held.
	// An empty query list yields true.
	HasAllRoles(ctx context.Context, userID string, roles []string, opts ...QueryOption) (bool, error)

	// HasAnyPermission reports whether at least one of the permissions is held.
	HasAnyPermission(ctx context.Context, userID string, permissions []string, opts ...QueryOption) (bool, error)

	// HasAllPermissions reports whether every one of the permissions is held.
	HasAllPermissions(ctx context.Context, userID string, permissions []string, opts ...QueryOption) (bool, error)

	// CheckRoles answers membership for each queried role against a single
	// fetched record, so the batch sees one consistent snapshot.
	CheckRoles(ctx context.Context, userID string, roles []string, opts ...QueryOption) (map[string]bool, error)

	// CheckPermissions answers membership for each queried permission
	// against a single fetched record.
	CheckPermissions(ctx context.Context, userID string, permissions []string, opts ...QueryOption) (map[string]bool, error)

	// GetEffectiveRoles returns the roles in effect for a resource.
	GetEffectiveRoles(ctx context.Context, userID, resource string, opts ...QueryOption) ([]string, error)

	// GetEffectivePermissions returns the permissions in effect for a resource.
	GetEffectivePermissions(ctx context.Context, userID, resource string, opts ...QueryOption) ([]string, error)
}

// LoginProvider exchanges caller credentials for a signed bearer token. The
// credential-collection flow itself lives outside this library; the
// interface exists so callers can plug in their own issuer.
type LoginProvider interface {
	Login(ctx context.Context, credentials Credentials) (string, error)
}

// Credentials carries what a caller presents to log in.
type Credentials struct {
	Username string
	Password string
}

// TokenValidator verifies a bearer token and returns the identity it
// asserts. Implementations fail with a descriptive error when the token is
// malformed, signature-invalid, expired, or carries malformed
// roles/permissions claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Identity, error)
}
