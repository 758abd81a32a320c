// Package service provides technical services for the ticket registry: id generation
// and the authentication policy applied before tickets are minted.
package service

import (
	"context"

	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// IDGenerator creates opaque, unguessable identifiers.
type IDGenerator interface {
	// GenerateID returns prefix followed by a random URL-safe string.
	GenerateID(prefix string) (string, error)
}

// AuthenticationPolicy decides whether an authentication may anchor a ticket.
type AuthenticationPolicy interface {
	// Authorize returns ErrAuthenticationRejected when the principal may not hold tickets.
	Authorize(ctx context.Context, authn ticketDomain.Authentication) error
}
