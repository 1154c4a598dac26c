package authx

import "fmt"

// ErrorCode represents validation and lookup error categories.
type ErrorCode string

const (
	ErrCodeInvalidToken        ErrorCode = "invalid_token"
	ErrCodeExpired             ErrorCode = "token_expired"
	ErrCodeNotYetValid         ErrorCode = "token_not_yet_valid"
	ErrCodeInvalidIssuer       ErrorCode = "invalid_issuer"
	ErrCodeInvalidAudience     ErrorCode = "invalid_audience"
	ErrCodeInvalidClaims       ErrorCode = "invalid_claims"
	ErrCodeJWKSUnavailable     ErrorCode = "jwks_unavailable"
	ErrCodeProviderUnavailable ErrorCode = "provider_unavailable"
	ErrCodeLoginFailed         ErrorCode = "login_failed"
	ErrCodeInternal            ErrorCode = "internal_error"
)

var errorMessages = map[ErrorCode]string{
	ErrCodeInvalidToken:        "Invalid token",
	ErrCodeExpired:             "Token expired",
	ErrCodeNotYetValid:         "Token not yet valid",
	ErrCodeInvalidIssuer:       "Invalid issuer",
	ErrCodeInvalidAudience:     "Invalid audience",
	ErrCodeInvalidClaims:       "Invalid claims",
	ErrCodeJWKSUnavailable:     "JWKS unavailable",
	ErrCodeProviderUnavailable: "Authorization provider unavailable",
	ErrCodeLoginFailed:         "Login failed",
	ErrCodeInternal:            "Internal error",
}

// Error wraps validation and provider errors with a stable code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, err error) error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	return &Error{Code: code, Message: msg, Err: err}
}
