package authx

import (
	"context"
	"testing"
	"time"

	"google.golang.org/api/idtoken"
)

func TestGoogleValidator_MapsPayloadIntoIdentity(t *testing.T) {
	original := googleValidate
	defer func() { googleValidate = original }()

	var observedDeadline time.Time
	googleValidate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		dl, ok := ctx.Deadline()
		if !ok {
			t.Fatal("expected validation context to have deadline")
		}
		observedDeadline = dl
		return &idtoken.Payload{
			Issuer:   "https://accounts.google.com",
			Audience: audience,
			Subject:  "serviceaccount:svc@example.com",
			IssuedAt: time.Now().Add(-time.Minute).Unix(),
			Expires:  time.Now().Add(time.Hour).Unix(),
			Claims: map[string]any{
				"email":          "svc@example.com",
				ClaimRoles:       []any{"service"},
				ClaimPermissions: []any{"pipeline:run"},
			},
		}, nil
	}

	validator := NewGoogleValidator("https://api.local.dev")
	validator.Issuer = "https://accounts.google.com"

	identity, err := validator.ValidateToken(context.Background(), "dummy-token")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if identity.UserID != "serviceaccount:svc@example.com" {
		t.Fatalf("unexpected user id: %s", identity.UserID)
	}
	if roles := identity.Roles(); len(roles) != 1 || roles[0] != "service" {
		t.Fatalf("unexpected roles: %v", roles)
	}
	if identity.Email() != "svc@example.com" {
		t.Fatalf("unexpected email: %s", identity.Email())
	}
	if observedDeadline.IsZero() {
		t.Fatal("expected observed deadline to be recorded")
	}
}

func TestGoogleValidator_IssuerMismatch(t *testing.T) {
	original := googleValidate
	defer func() { googleValidate = original }()

	googleValidate = func(_ context.Context, _, audience string) (*idtoken.Payload, error) {
		return &idtoken.Payload{
			Issuer:   "https://rogue-issuer",
			Audience: audience,
			Subject:  "svc",
		}, nil
	}

	validator := NewGoogleValidator("aud")
	validator.Issuer = "https://accounts.google.com"

	_, err := validator.ValidateToken(context.Background(), "dummy-token")
	assertErrorCode(t, err, ErrCodeInvalidIssuer)
}

func TestGoogleValidator_MalformedRolesClaim(t *testing.T) {
	original := googleValidate
	defer func() { googleValidate = original }()

	googleValidate = func(_ context.Context, _, audience string) (*idtoken.Payload, error) {
		return &idtoken.Payload{
			Issuer:   "https://accounts.google.com",
			Audience: audience,
			Subject:  "svc",
			Claims:   map[string]any{ClaimRoles: "service"},
		}, nil
	}

	validator := NewGoogleValidator("aud")
	_, err := validator.ValidateToken(context.Background(), "dummy-token")
	assertErrorCode(t, err, ErrCodeInvalidClaims)
}

func TestGoogleValidator_EmptyToken(t *testing.T) {
	validator := NewGoogleValidator("aud")
	_, err := validator.ValidateToken(context.Background(), "")
	assertErrorCode(t, err, ErrCodeInvalidToken)
}
