// Package repository provides ticket registry implementations backed by process memory and Redis.
package repository

import (
	"context"
	"sync"
	"time"

	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// MemoryTicketRegistry keeps tickets in a map guarded by a mutex.
//
// Expired tickets stay readable for the retention grace period and are dropped
// on the first read after it.
type MemoryTicketRegistry struct {
	mu      sync.Mutex
	tickets map[string]ticketDomain.Ticket
	grace   time.Duration
	now     func() time.Time
}

// Add stores a copy of the ticket.
func (m *MemoryTicketRegistry) Add(ctx context.Context, ticket *ticketDomain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tickets[ticket.ID] = cloneTicket(ticket)
	return nil
}

// Get returns a copy of the ticket or ErrTicketNotFound.
func (m *MemoryTicketRegistry) Get(ctx context.Context, ticketID string) (*ticketDomain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[ticketID]
	if !ok {
		return nil, ticketDomain.ErrTicketNotFound
	}
	if !m.now().Before(ticket.ExpiresAt.Add(m.grace)) {
		delete(m.tickets, ticketID)
		return nil, ticketDomain.ErrTicketNotFound
	}

	result := cloneTicket(&ticket)
	return &result, nil
}

// Delete removes the ticket and reports whether it was present.
func (m *MemoryTicketRegistry) Delete(ctx context.Context, ticketID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tickets[ticketID]; !ok {
		return false, nil
	}
	delete(m.tickets, ticketID)
	return true, nil
}

// Len returns the number of stored tickets, including expired ones still retained.
func (m *MemoryTicketRegistry) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tickets)
}

func cloneTicket(ticket *ticketDomain.Ticket) ticketDomain.Ticket {
	clone := *ticket
	if ticket.Authentication.Attributes != nil {
		clone.Authentication.Attributes = make(map[string]string, len(ticket.Authentication.Attributes))
		for k, v := range ticket.Authentication.Attributes {
			clone.Authentication.Attributes[k] = v
		}
	}
	return clone
}

// NewMemoryTicketRegistry creates an in-memory registry.
func NewMemoryTicketRegistry(retentionGrace time.Duration) *MemoryTicketRegistry {
	return &MemoryTicketRegistry{
		tickets: make(map[string]ticketDomain.Ticket),
		grace:   retentionGrace,
		now:     time.Now,
	}
}
