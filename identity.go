package authx

// Identity is the validated-token view of who the caller is. It is built
// once per validated token and never mutated afterwards.
type Identity struct {
	UserID string
	Claims ClaimsMap
}

// NewIdentity derives an Identity from verified claims. The user id comes
// from the "sub" claim, falling back to "user_id"; tokens carrying neither
// produce an empty user id, which the provider treats as an unknown user.
func NewIdentity(claims ClaimsMap) *Identity {
	if claims == nil {
		claims = ClaimsMap{}
	}
	userID, ok := claims.Subject()
	if !ok || userID == "" {
		if alias, aliasOK := GetClaim[string](claims, ClaimUserID); aliasOK {
			userID = alias
		}
	}
	return &Identity{UserID: userID, Claims: claims}
}

// Roles returns the token-carried roles, empty when the claim is absent or
// malformed.
func (i *Identity) Roles() []string {
	return StringList(i.Claims, ClaimRoles)
}

// Permissions returns the token-carried permissions, empty when the claim is
// absent or malformed.
func (i *Identity) Permissions() []string {
	return StringList(i.Claims, ClaimPermissions)
}

// Email returns the "email" claim, empty when absent.
func (i *Identity) Email() string {
	email, _ := GetClaim[string](i.Claims, ClaimEmail)
	return email
}
