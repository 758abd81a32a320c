// Package domain defines the SSO ticket model shared by the ticket registry and the token engine.
package domain

import (
	"strings"
	"time"
)

// Kind identifies the two ticket flavors held by the registry.
type Kind string

const (
	// KindGrantor is a long-lived ticket anchoring an authenticated session.
	KindGrantor Kind = "grantor"
	// KindService is a short-lived, single-target ticket minted from a grantor ticket.
	KindService Kind = "service"
)

// Ticket id prefixes. They never change once tickets have been issued.
const (
	GrantorTicketPrefix = "TGT-"
	ServiceTicketPrefix = "ST-"
)

// Prefix returns the id prefix used for tickets of this kind.
func (k Kind) Prefix() string {
	switch k {
	case KindGrantor:
		return GrantorTicketPrefix
	case KindService:
		return ServiceTicketPrefix
	default:
		return ""
	}
}

// KindFromID infers the ticket kind from its id prefix.
func KindFromID(id string) (Kind, bool) {
	switch {
	case strings.HasPrefix(id, GrantorTicketPrefix):
		return KindGrantor, true
	case strings.HasPrefix(id, ServiceTicketPrefix):
		return KindService, true
	default:
		return "", false
	}
}

// Authentication captures who authenticated and how.
type Authentication struct {
	PrincipalID     string            `json:"principal_id"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	Method          string            `json:"method"`
	AuthenticatedAt time.Time         `json:"authenticated_at"`
}

// Ticket is a session artifact held by the registry.
//
// Service tickets copy the authentication of the grantor they were minted from and
// keep its id in GrantorTicketID.
type Ticket struct {
	ID              string         `json:"id"`
	Kind            Kind           `json:"kind"`
	Authentication  Authentication `json:"authentication"`
	Service         string         `json:"service,omitempty"`
	GrantorTicketID string         `json:"grantor_ticket_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	ExpiresAt       time.Time      `json:"expires_at"`
}

// IsExpired reports whether the ticket is no longer valid at now.
func (t *Ticket) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ExpiresIn returns the remaining lifetime at now, never negative.
func (t *Ticket) ExpiresIn(now time.Time) time.Duration {
	if remaining := t.ExpiresAt.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}
