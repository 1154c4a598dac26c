package authx

import (
	"encoding/json"
	"time"
)

// Standard claim names shared across issuers.
const (
	ClaimSubject    = "sub"
	ClaimIssuedAt   = "iat"
	ClaimExpiration = "exp"
	ClaimIssuer     = "iss"
	ClaimAudience   = "aud"
	ClaimNotBefore  = "nbf"
	ClaimJWTID      = "jti"
)

// Custom claim names understood by the authorization layer.
const (
	ClaimRoles       = "roles"
	ClaimPermissions = "permissions"
	ClaimEmail       = "email"
	ClaimUserID      = "user_id"
)

// ClaimsMap holds the verified claims of an identity token, keyed by claim
// name. Values keep whatever dynamic type the token carried; typed access
// goes through the accessors below or GetClaim.
type ClaimsMap map[string]any

// Subject returns the "sub" claim.
func (c ClaimsMap) Subject() (string, bool) {
	return GetClaim[string](c, ClaimSubject)
}

// Issuer returns the "iss" claim.
func (c ClaimsMap) Issuer() (string, bool) {
	return GetClaim[string](c, ClaimIssuer)
}

// JWTID returns the "jti" claim.
func (c ClaimsMap) JWTID() (string, bool) {
	return GetClaim[string](c, ClaimJWTID)
}

// Audience returns the raw "aud" claim. Tokens carry it either as a single
// string or as a list, so the value is returned as-is.
func (c ClaimsMap) Audience() (any, bool) {
	v, ok := c[ClaimAudience]
	return v, ok
}

// Expiration returns the "exp" claim as a timestamp.
func (c ClaimsMap) Expiration() (time.Time, bool) {
	return c.timeClaim(ClaimExpiration)
}

// IssuedAt returns the "iat" claim as a timestamp.
func (c ClaimsMap) IssuedAt() (time.Time, bool) {
	return c.timeClaim(ClaimIssuedAt)
}

// NotBefore returns the "nbf" claim as a timestamp.
func (c ClaimsMap) NotBefore() (time.Time, bool) {
	return c.timeClaim(ClaimNotBefore)
}

// IsExpired reports whether the "exp" claim is set and strictly in the past.
func (c ClaimsMap) IsExpired() bool {
	exp, ok := c.Expiration()
	return ok && exp.Before(time.Now())
}

// IsNotYetValid reports whether the "nbf" claim is set and strictly in the
// future.
func (c ClaimsMap) IsNotYetValid() bool {
	nbf, ok := c.NotBefore()
	return ok && nbf.After(time.Now())
}

// IsValid reports whether the claims are inside their validity window.
func (c ClaimsMap) IsValid() bool {
	return !c.IsExpired() && !c.IsNotYetValid()
}

func (c ClaimsMap) timeClaim(name string) (time.Time, bool) {
	v, ok := c[name]
	if !ok {
		return time.Time{}, false
	}
	switch n := v.(type) {
	case time.Time:
		return n, true
	case float64:
		return time.Unix(int64(n), 0).UTC(), true
	case int64:
		return time.Unix(n, 0).UTC(), true
	case int:
		return time.Unix(int64(n), 0).UTC(), true
	case json.Number:
		sec, err := n.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(sec, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

// GetClaim returns the claim cast to T. It reports false when the claim is
// absent or holds a different type; callers rely on the zero-value default,
// so a mismatch is never an error.
func GetClaim[T any](c ClaimsMap, name string) (T, bool) {
	var zero T
	v, ok := c[name]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// StringList reads a list-valued claim tolerantly. Absent or malformed
// claims yield an empty slice, never nil-panics or errors.
func StringList(c ClaimsMap, name string) []string {
	v, ok := c[name]
	if !ok {
		return nil
	}
	return normalizeStrings(v)
}

func normalizeStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func isStringList(value any) bool {
	switch v := value.(type) {
	case []string:
		return true
	case []any:
		for _, item := range v {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}
