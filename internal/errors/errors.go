// Package errors holds the sentinel errors shared by the ticket registry and the
// token engine. Module errors wrap one of these so handlers can pick an HTTP status
// or an RFC 6749 error code with Is, without knowing which module failed.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound backs missing tickets, clients and personal tokens.
	ErrNotFound = errors.New("not found")

	// ErrConflict backs duplicate ticket, client or token ids.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput backs validation failures and malformed parameters.
	// The token endpoint reports it as invalid_request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized backs unknown or expired bearer tokens (invalid_token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden backs a failed client authentication or a scope the bearer lacks.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidGrant backs a code or refresh token that cannot be redeemed: its ticket
	// expired, a concurrent exchange already consumed it, the redirect_uri differs or it
	// was issued to another client. The token endpoint answers 400 invalid_grant.
	ErrInvalidGrant = errors.New("invalid grant")
)

// New is errors.New.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message and keeps it matchable with Is. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
