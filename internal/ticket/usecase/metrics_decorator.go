package usecase

import (
	"context"
	"time"

	"github.com/allisson/casoauth/internal/metrics"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// ticketUseCaseWithMetrics decorates TicketUseCase with metrics instrumentation.
type ticketUseCaseWithMetrics struct {
	next    TicketUseCase
	metrics metrics.BusinessMetrics
}

// NewTicketUseCaseWithMetrics wraps a TicketUseCase with metrics recording.
func NewTicketUseCaseWithMetrics(useCase TicketUseCase, m metrics.BusinessMetrics) TicketUseCase {
	return &ticketUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *ticketUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.RecordOutcome(ctx, t.metrics, metrics.DomainTicket, operation, start, err)
}

// CreateGrantorTicket records metrics for grantor ticket creation.
func (t *ticketUseCaseWithMetrics) CreateGrantorTicket(
	ctx context.Context,
	authn ticketDomain.Authentication,
	ttl time.Duration,
) (*ticketDomain.Ticket, error) {
	start := time.Now()
	ticket, err := t.next.CreateGrantorTicket(ctx, authn, ttl)
	t.record(ctx, "grantor_create", start, err)
	return ticket, err
}

// GrantServiceTicket records metrics for service ticket issuance.
func (t *ticketUseCaseWithMetrics) GrantServiceTicket(
	ctx context.Context,
	grantorTicketID string,
	service string,
	ttl time.Duration,
) (*ticketDomain.Ticket, error) {
	start := time.Now()
	ticket, err := t.next.GrantServiceTicket(ctx, grantorTicketID, service, ttl)
	t.record(ctx, "service_grant", start, err)
	return ticket, err
}

// GetTicket records metrics for ticket retrieval.
func (t *ticketUseCaseWithMetrics) GetTicket(ctx context.Context, ticketID string) (*ticketDomain.Ticket, error) {
	start := time.Now()
	ticket, err := t.next.GetTicket(ctx, ticketID)
	t.record(ctx, "ticket_get", start, err)
	return ticket, err
}

func (t *ticketUseCaseWithMetrics) IsExpired(ticket *ticketDomain.Ticket) bool {
	return t.next.IsExpired(ticket)
}

func (t *ticketUseCaseWithMetrics) ExpiresIn(ticket *ticketDomain.Ticket) time.Duration {
	return t.next.ExpiresIn(ticket)
}

// DeleteTicket records metrics for ticket deletion.
func (t *ticketUseCaseWithMetrics) DeleteTicket(ctx context.Context, ticketID string) (bool, error) {
	start := time.Now()
	deleted, err := t.next.DeleteTicket(ctx, ticketID)
	t.record(ctx, "ticket_delete", start, err)
	return deleted, err
}

// ValidateServiceTicket records metrics for native service ticket validation.
func (t *ticketUseCaseWithMetrics) ValidateServiceTicket(
	ctx context.Context,
	serviceTicketID string,
	service string,
) (*ticketDomain.Ticket, error) {
	start := time.Now()
	grantor, err := t.next.ValidateServiceTicket(ctx, serviceTicketID, service)
	t.record(ctx, "service_validate", start, err)
	return grantor, err
}
