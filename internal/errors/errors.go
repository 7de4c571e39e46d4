package errors

import (
	"errors"
	"fmt"
)

// Common error types for the dashboard auth core
var (
	// Flow errors
	ErrStateMismatch   = errors.New("invalid state (CSRF protection)")
	ErrMissingVerifier = errors.New("missing PKCE verifier")
	ErrAlreadyHandled  = errors.New("auth callback already handled, but no tokens found")

	// Token endpoint errors
	ErrExchangeRejected = errors.New("token exchange failed")
	ErrRefreshRejected  = errors.New("refresh failed")

	// Config errors
	ErrMissingConfig = errors.New("missing configuration")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Kind classifies an AuthError.
type Kind int

const (
	KindStateMismatch Kind = iota + 1
	KindMissingVerifier
	KindAlreadyHandled
	KindExchangeRejected
	KindRefreshRejected
)

func (k Kind) sentinel() error {
	switch k {
	case KindStateMismatch:
		return ErrStateMismatch
	case KindMissingVerifier:
		return ErrMissingVerifier
	case KindAlreadyHandled:
		return ErrAlreadyHandled
	case KindExchangeRejected:
		return ErrExchangeRejected
	case KindRefreshRejected:
		return ErrRefreshRejected
	}
	return ErrInternal
}

func (k Kind) String() string {
	switch k {
	case KindStateMismatch:
		return "state_mismatch"
	case KindMissingVerifier:
		return "missing_verifier"
	case KindAlreadyHandled:
		return "already_handled"
	case KindExchangeRejected:
		return "exchange_rejected"
	case KindRefreshRejected:
		return "refresh_rejected"
	}
	return "unknown"
}

// AuthError is returned by the PKCE flow engine. Status and Detail are set when
// the token endpoint answered with a non-success status.
type AuthError struct {
	Kind   Kind
	Status int
	Detail string
	Err    error
}

// NewAuthError creates an AuthError of the given kind wrapping err (may be nil).
func NewAuthError(kind Kind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: %d %s", msg, e.Status, e.Detail)
	} else if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the kind, so errors.Is(err, ErrStateMismatch) works.
func (e *AuthError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of the first AuthError in err's chain.
func KindOf(err error) (Kind, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind, true
	}
	return 0, false
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
