package authx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
)

var googleValidate = idtoken.Validate

// GoogleValidator is an alternate TokenValidator backed by Google's ID token
// verification endpoint. It maps Google payloads into the same claims shape
// the reference validator produces, so the rest of the library is oblivious
// to which backend verified the token.
type GoogleValidator struct {
	Audience string
	Issuer   string
	Timeout  time.Duration
}

// NewGoogleValidator builds a validator for Google-issued ID tokens.
func NewGoogleValidator(audience string) *GoogleValidator {
	return &GoogleValidator{
		Audience: audience,
		Timeout:  defaultHTTPTimeout,
	}
}

// ValidateToken verifies a Google ID token and returns the asserted identity.
func (g *GoogleValidator) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, newError(ErrCodeInvalidToken, errors.New("token is empty"))
	}

	validateCtx := ctx
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		validateCtx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	payload, err := googleValidate(validateCtx, token, g.Audience)
	if err != nil {
		return nil, mapGoogleError(err)
	}
	if g.Issuer != "" && !strings.EqualFold(payload.Issuer, g.Issuer) {
		return nil, newError(ErrCodeInvalidIssuer, fmt.Errorf("issuer mismatch: got %s, want %s", payload.Issuer, g.Issuer))
	}

	claims := claimsFromGooglePayload(payload)
	if err := checkAuthorizationClaims(claims); err != nil {
		return nil, err
	}
	return NewIdentity(claims), nil
}

func claimsFromGooglePayload(payload *idtoken.Payload) ClaimsMap {
	claims := ClaimsMap{}
	if payload.Subject != "" {
		claims[ClaimSubject] = payload.Subject
	}
	if payload.Issuer != "" {
		claims[ClaimIssuer] = payload.Issuer
	}
	if payload.Audience != "" {
		claims[ClaimAudience] = payload.Audience
	}
	if payload.Expires != 0 {
		claims[ClaimExpiration] = time.Unix(payload.Expires, 0).UTC()
	}
	if payload.IssuedAt != 0 {
		claims[ClaimIssuedAt] = time.Unix(payload.IssuedAt, 0).UTC()
	}
	for k, v := range payload.Claims {
		if _, ok := claims[k]; ok {
			continue
		}
		claims[k] = v
	}
	return claims
}

func mapGoogleError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "audience provided does not match"):
		return newError(ErrCodeInvalidAudience, err)
	case strings.Contains(msg, "token expired"):
		return newError(ErrCodeExpired, err)
	case strings.Contains(msg, "could not find matching cert"):
		return newError(ErrCodeInvalidToken, err)
	case strings.Contains(msg, "invalid token"):
		return newError(ErrCodeInvalidToken, err)
	case strings.Contains(msg, "unable to decode JWT"):
		return newError(ErrCodeInvalidToken, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(ErrCodeJWKSUnavailable, err)
	}
	return newError(ErrCodeInvalidToken, err)
}

var _ TokenValidator = (*GoogleValidator)(nil)
