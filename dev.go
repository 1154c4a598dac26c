package authx

// DevBypassIdentity holds attributes used when issuing a synthetic identity
// in dev mode, skipping token validation entirely.
type DevBypassIdentity struct {
	Subject     string
	Issuer      string
	Roles       []string
	Permissions []string
	Email       string
}

// ToCallerEvaluation converts the dev bypass configuration into a caller
// evaluation backed by an empty authorization record.
func (d DevBypassIdentity) ToCallerEvaluation() CallerEvaluation {
	claims := ClaimsMap{
		ClaimSubject: d.Subject,
	}
	if d.Issuer != "" {
		claims[ClaimIssuer] = d.Issuer
	}
	if d.Email != "" {
		claims[ClaimEmail] = d.Email
	}
	if len(d.Roles) > 0 {
		claims[ClaimRoles] = append([]string(nil), d.Roles...)
	}
	if len(d.Permissions) > 0 {
		claims[ClaimPermissions] = append([]string(nil), d.Permissions...)
	}
	identity := NewIdentity(claims)
	return CallerEvaluation{
		Evaluation: NewEvaluation(identity, EmptyRecord(identity.UserID)),
		DevBypass:  true,
	}
}

// DefaultDevBypassIdentity returns a baseline identity suitable for local
// development.
func DefaultDevBypassIdentity() DevBypassIdentity {
	return DevBypassIdentity{
		Subject: "dev-bypass",
		Issuer:  "authx.dev",
		Roles:   []string{"admin"},
	}
}
