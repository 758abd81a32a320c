// Package usecase implements the SSO ticket registry operations used by the login flow,
// the native service validation endpoint and the OAuth token engine.
package usecase

import (
	"context"
	"time"

	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// TicketRegistry stores tickets by id.
//
// Implementations must keep expired tickets readable for a retention period so that
// expiry is observed by callers. Delete must be atomic: when two callers delete the
// same id concurrently exactly one of them observes deleted == true.
type TicketRegistry interface {
	// Add stores a new ticket.
	Add(ctx context.Context, ticket *ticketDomain.Ticket) error

	// Get retrieves a ticket by id. Returns ErrTicketNotFound if not found.
	Get(ctx context.Context, ticketID string) (*ticketDomain.Ticket, error)

	// Delete removes a ticket and reports whether it existed.
	Delete(ctx context.Context, ticketID string) (deleted bool, err error)
}

// TicketUseCase defines the ticket lifecycle.
type TicketUseCase interface {
	// CreateGrantorTicket mints a grantor ticket for the authentication after the
	// authentication policy accepts it. A ttl <= 0 uses the configured grantor lifetime.
	CreateGrantorTicket(
		ctx context.Context,
		authn ticketDomain.Authentication,
		ttl time.Duration,
	) (*ticketDomain.Ticket, error)

	// GrantServiceTicket mints a service ticket for service from a live grantor ticket.
	// A ttl <= 0 uses the configured service lifetime.
	GrantServiceTicket(
		ctx context.Context,
		grantorTicketID string,
		service string,
		ttl time.Duration,
	) (*ticketDomain.Ticket, error)

	// GetTicket returns the ticket even when it has expired; use IsExpired to check liveness.
	GetTicket(ctx context.Context, ticketID string) (*ticketDomain.Ticket, error)

	// IsExpired reports whether the ticket is expired at the current time.
	IsExpired(ticket *ticketDomain.Ticket) bool

	// ExpiresIn returns the remaining lifetime of the ticket.
	ExpiresIn(ticket *ticketDomain.Ticket) time.Duration

	// DeleteTicket removes a ticket and reports whether this call deleted it.
	DeleteTicket(ctx context.Context, ticketID string) (bool, error)

	// ValidateServiceTicket consumes a service ticket issued for service and returns the
	// grantor ticket it was minted from. The service ticket is consumed even on failure.
	ValidateServiceTicket(
		ctx context.Context,
		serviceTicketID string,
		service string,
	) (*ticketDomain.Ticket, error)
}
