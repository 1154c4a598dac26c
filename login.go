package authx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"golang.org/x/oauth2"
)

const defaultTokenTTL = time.Hour

// MemoryLoginProvider is the in-memory reference LoginProvider. It verifies
// credentials against a registered user table and mints HS256-signed tokens
// carrying the user's roles and permissions claims. A configurable delay
// simulates the network latency of a real identity backend, so callers
// exercise the async path even in tests.
type MemoryLoginProvider struct {
	mu     sync.RWMutex
	users  map[string]memoryUser
	key    jwk.Key
	issuer string
	ttl    time.Duration
	delay  time.Duration
}

type memoryUser struct {
	Password    string
	Roles       []string
	Permissions []string
	Extra       map[string]any
}

// MemoryLoginConfig configures the reference login double.
type MemoryLoginConfig struct {
	// Secret signs issued tokens; a Validator configured with the same
	// secret accepts them.
	Secret string
	Issuer string
	// TokenTTL bounds issued token lifetime; defaults to one hour.
	TokenTTL time.Duration
	// Delay is slept before each login to simulate backend latency.
	Delay time.Duration
}

// NewMemoryLoginProvider builds the reference login double.
func NewMemoryLoginProvider(cfg MemoryLoginConfig) (*MemoryLoginProvider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("signing secret is required")
	}
	key, err := jwk.FromRaw([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("build signing key: %w", err)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &MemoryLoginProvider{
		users:  make(map[string]memoryUser),
		key:    key,
		issuer: cfg.Issuer,
		ttl:    ttl,
		delay:  cfg.Delay,
	}, nil
}

// RegisterUser stores or replaces a user's credentials and token claims.
func (p *MemoryLoginProvider) RegisterUser(username, password string, roles, permissions []string, extra map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[username] = memoryUser{
		Password:    password,
		Roles:       append([]string(nil), roles...),
		Permissions: append([]string(nil), permissions...),
		Extra:       extra,
	}
}

// Login verifies the credentials and returns a signed bearer token.
func (p *MemoryLoginProvider) Login(ctx context.Context, credentials Credentials) (string, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", newError(ErrCodeLoginFailed, ctx.Err())
		}
	}

	p.mu.RLock()
	user, ok := p.users[credentials.Username]
	p.mu.RUnlock()
	if !ok || user.Password != credentials.Password {
		return "", newError(ErrCodeLoginFailed, errors.New("unknown user or wrong password"))
	}

	now := time.Now()
	builder := jwt.NewBuilder().
		Subject(credentials.Username).
		JwtID(uuid.NewString()).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(p.ttl)).
		Claim(ClaimRoles, user.Roles).
		Claim(ClaimPermissions, user.Permissions)
	if p.issuer != "" {
		builder = builder.Issuer(p.issuer)
	}
	for k, v := range user.Extra {
		builder = builder.Claim(k, v)
	}

	token, err := builder.Build()
	if err != nil {
		return "", newError(ErrCodeInternal, err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, p.key))
	if err != nil {
		return "", newError(ErrCodeInternal, err)
	}
	return string(signed), nil
}

// TokenSourceLogin adapts an oauth2.TokenSource into a LoginProvider, so
// callers already holding an oauth2 flow (client credentials, impersonation)
// can feed its tokens straight into the authorization facade. Credentials
// are ignored; the source owns them.
type TokenSourceLogin struct {
	Source oauth2.TokenSource
}

// Login returns the source's current access token.
func (t TokenSourceLogin) Login(_ context.Context, _ Credentials) (string, error) {
	if t.Source == nil {
		return "", newError(ErrCodeLoginFailed, errors.New("token source is not configured"))
	}
	tok, err := t.Source.Token()
	if err != nil {
		return "", newError(ErrCodeLoginFailed, err)
	}
	if tok.AccessToken == "" {
		return "", newError(ErrCodeLoginFailed, errors.New("empty access token returned"))
	}
	return tok.AccessToken, nil
}

var (
	_ LoginProvider = (*MemoryLoginProvider)(nil)
	_ LoginProvider = TokenSourceLogin{}
)
