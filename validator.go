package authx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Validator is the reference TokenValidator. It verifies token signatures
// with a shared HMAC secret, a static RSA public key, or a remote JWKS,
// checks the validity window, and rejects tokens whose roles/permissions
// claims are not list-typed before they reach the authorization merge.
type Validator struct {
	cfg       ValidatorConfig
	secretKey jwk.Key
	staticKey jwk.Key
	cache     *jwk.Cache
}

// NewValidator builds a validator from the given configuration.
func NewValidator(cfg ValidatorConfig) (*Validator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.normalize()

	v := &Validator{cfg: cfg}
	switch {
	case cfg.Secret != "":
		key, err := jwk.FromRaw([]byte(cfg.Secret))
		if err != nil {
			return nil, fmt.Errorf("build HMAC key: %w", err)
		}
		v.secretKey = key
	case cfg.PublicKeyPEM != "":
		key, err := jwk.ParseKey([]byte(cfg.PublicKeyPEM), jwk.WithPEM(true))
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		v.staticKey = key
	default:
		cache := jwk.NewCache(context.Background())
		httpClient := &http.Client{
			Timeout: cfg.HTTPTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
			},
		}
		if err := cache.Register(
			cfg.JWKSURL,
			jwk.WithMinRefreshInterval(cfg.MinRefresh),
			jwk.WithHTTPClient(httpClient),
		); err != nil {
			return nil, fmt.Errorf("register jwks: %w", err)
		}
		v.cache = cache
	}
	return v, nil
}

// Warmup refreshes the JWKS cache. It is a no-op for local-key modes.
func (v *Validator) Warmup(ctx context.Context) error {
	if v.cache == nil {
		return nil
	}
	refreshCtx := ctx
	if v.cfg.HTTPTimeout > 0 {
		var cancel context.CancelFunc
		refreshCtx, cancel = context.WithTimeout(ctx, v.cfg.HTTPTimeout)
		defer cancel()
	}
	if _, err := v.cache.Refresh(refreshCtx, v.cfg.JWKSURL); err != nil {
		return newError(ErrCodeJWKSUnavailable, err)
	}
	return nil
}

// ValidateToken verifies the token and returns the identity it asserts.
func (v *Validator) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, newError(ErrCodeInvalidToken, errors.New("token is empty"))
	}

	parseOpts, err := v.parseOptions(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.Parse([]byte(token), parseOpts...)
	if err != nil {
		if mapped := classifyValidationError(err); mapped != nil {
			return nil, mapped
		}
		return nil, newError(ErrCodeInvalidToken, err)
	}

	validateOpts := []jwt.ValidateOption{
		jwt.WithAcceptableSkew(v.cfg.ClockSkew),
	}
	if v.cfg.Issuer != "" {
		validateOpts = append(validateOpts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		validateOpts = append(validateOpts, jwt.WithAudience(v.cfg.Audience))
	}
	if err := jwt.Validate(parsed, validateOpts...); err != nil {
		switch {
		case errors.Is(err, jwt.ErrInvalidIssuer()):
			return nil, newError(ErrCodeInvalidIssuer, err)
		case errors.Is(err, jwt.ErrInvalidAudience()):
			return nil, newError(ErrCodeInvalidAudience, err)
		case errors.Is(err, jwt.ErrTokenExpired()):
			return nil, newError(ErrCodeExpired, err)
		case errors.Is(err, jwt.ErrTokenNotYetValid()):
			return nil, newError(ErrCodeNotYetValid, err)
		default:
			if mapped := classifyValidationError(err); mapped != nil {
				return nil, mapped
			}
			return nil, newError(ErrCodeInvalidToken, err)
		}
	}

	claims := claimsFromToken(parsed)
	if err := checkAuthorizationClaims(claims); err != nil {
		return nil, err
	}
	return NewIdentity(claims), nil
}

func (v *Validator) parseOptions(ctx context.Context) ([]jwt.ParseOption, error) {
	switch {
	case v.secretKey != nil:
		return []jwt.ParseOption{jwt.WithKey(jwa.HS256, v.secretKey)}, nil
	case v.staticKey != nil:
		return []jwt.ParseOption{jwt.WithKey(jwa.RS256, v.staticKey)}, nil
	default:
		keySet, err := v.cache.Get(ctx, v.cfg.JWKSURL)
		if err != nil {
			return nil, newError(ErrCodeJWKSUnavailable, err)
		}
		return []jwt.ParseOption{jwt.WithKeySet(keySet)}, nil
	}
}

// claimsFromToken flattens a parsed token into the open claims mapping.
// Standard timestamps are stored as time.Time; private claims keep their
// dynamic types.
func claimsFromToken(token jwt.Token) ClaimsMap {
	claims := ClaimsMap{}
	if sub := token.Subject(); sub != "" {
		claims[ClaimSubject] = sub
	}
	if iss := token.Issuer(); iss != "" {
		claims[ClaimIssuer] = iss
	}
	if jti := token.JwtID(); jti != "" {
		claims[ClaimJWTID] = jti
	}
	if aud := token.Audience(); len(aud) > 0 {
		claims[ClaimAudience] = append([]string(nil), aud...)
	}
	if exp := token.Expiration(); !exp.IsZero() {
		claims[ClaimExpiration] = exp
	}
	if iat := token.IssuedAt(); !iat.IsZero() {
		claims[ClaimIssuedAt] = iat
	}
	if nbf := token.NotBefore(); !nbf.IsZero() {
		claims[ClaimNotBefore] = nbf
	}
	for k, v := range token.PrivateClaims() {
		claims[k] = v
	}
	return claims
}

// checkAuthorizationClaims rejects tokens whose roles/permissions claims
// exist but are not lists of strings. Claims feeding the authorization merge
// are not trusted on shape alone.
func checkAuthorizationClaims(claims ClaimsMap) error {
	for _, name := range []string{ClaimRoles, ClaimPermissions} {
		v, ok := claims[name]
		if !ok {
			continue
		}
		if !isStringList(v) {
			return newError(ErrCodeInvalidClaims, fmt.Errorf("claim %q must be a list of strings, got %T", name, v))
		}
	}
	return nil
}

func classifyValidationError(err error) error {
	if err == nil {
		return nil
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "token expired") || strings.Contains(lower, `"exp" not satisfied`):
		return newError(ErrCodeExpired, err)
	case strings.Contains(lower, `"nbf" not satisfied`):
		return newError(ErrCodeNotYetValid, err)
	}
	return nil
}

var _ TokenValidator = (*Validator)(nil)
