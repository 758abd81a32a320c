package domain

import (
	"github.com/allisson/casoauth/internal/errors"
)

// Ticket registry errors.
var (
	// ErrTicketNotFound indicates no ticket exists with the given id.
	ErrTicketNotFound = errors.Wrap(errors.ErrNotFound, "ticket not found")

	// ErrTicketExpired indicates the ticket exists but its lifetime has elapsed.
	ErrTicketExpired = errors.Wrap(errors.ErrUnauthorized, "ticket expired")

	// ErrInvalidTicketKind indicates a ticket id was used where another kind was required.
	ErrInvalidTicketKind = errors.Wrap(errors.ErrInvalidInput, "invalid ticket kind")

	// ErrServiceMismatch indicates a service ticket was presented for a different service.
	ErrServiceMismatch = errors.Wrap(errors.ErrForbidden, "service mismatch")

	// ErrAuthenticationRejected indicates the authentication policy refused the principal.
	ErrAuthenticationRejected = errors.Wrap(errors.ErrForbidden, "authentication rejected")
)
