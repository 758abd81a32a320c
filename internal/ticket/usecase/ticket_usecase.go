package usecase

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/allisson/casoauth/internal/errors"
	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
	ticketService "github.com/allisson/casoauth/internal/ticket/service"
)

// Config holds ticket lifetimes.
type Config struct {
	GrantorTTL time.Duration
	ServiceTTL time.Duration
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

type ticketUseCase struct {
	registry    TicketRegistry
	idGenerator ticketService.IDGenerator
	policy      ticketService.AuthenticationPolicy
	grantorTTL  time.Duration
	serviceTTL  time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

func (t *ticketUseCase) CreateGrantorTicket(
	ctx context.Context,
	authn ticketDomain.Authentication,
	ttl time.Duration,
) (*ticketDomain.Ticket, error) {
	if err := t.policy.Authorize(ctx, authn); err != nil {
		t.logger.Info("grantor ticket rejected",
			slog.String("principal_id", authn.PrincipalID),
			slog.Any("error", err),
		)
		return nil, err
	}

	if ttl <= 0 {
		ttl = t.grantorTTL
	}

	now := t.now().UTC()
	if authn.AuthenticatedAt.IsZero() {
		authn.AuthenticatedAt = now
	}

	id, err := t.idGenerator.GenerateID(ticketDomain.GrantorTicketPrefix)
	if err != nil {
		return nil, err
	}

	ticket := &ticketDomain.Ticket{
		ID:             id,
		Kind:           ticketDomain.KindGrantor,
		Authentication: authn,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}

	if err := t.registry.Add(ctx, ticket); err != nil {
		return nil, err
	}

	return ticket, nil
}

func (t *ticketUseCase) GrantServiceTicket(
	ctx context.Context,
	grantorTicketID string,
	service string,
	ttl time.Duration,
) (*ticketDomain.Ticket, error) {
	grantor, err := t.registry.Get(ctx, grantorTicketID)
	if err != nil {
		return nil, err
	}
	if grantor.Kind != ticketDomain.KindGrantor {
		return nil, ticketDomain.ErrInvalidTicketKind
	}
	if t.IsExpired(grantor) {
		return nil, ticketDomain.ErrTicketExpired
	}

	// Principals disabled after login lose the ability to mint new tickets.
	if err := t.policy.Authorize(ctx, grantor.Authentication); err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = t.serviceTTL
	}

	id, err := t.idGenerator.GenerateID(ticketDomain.ServiceTicketPrefix)
	if err != nil {
		return nil, err
	}

	now := t.now().UTC()
	ticket := &ticketDomain.Ticket{
		ID:              id,
		Kind:            ticketDomain.KindService,
		Authentication:  grantor.Authentication,
		Service:         service,
		GrantorTicketID: grantor.ID,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}

	if err := t.registry.Add(ctx, ticket); err != nil {
		return nil, err
	}

	return ticket, nil
}

func (t *ticketUseCase) GetTicket(ctx context.Context, ticketID string) (*ticketDomain.Ticket, error) {
	return t.registry.Get(ctx, ticketID)
}

func (t *ticketUseCase) IsExpired(ticket *ticketDomain.Ticket) bool {
	return ticket.IsExpired(t.now())
}

func (t *ticketUseCase) ExpiresIn(ticket *ticketDomain.Ticket) time.Duration {
	return ticket.ExpiresIn(t.now())
}

func (t *ticketUseCase) DeleteTicket(ctx context.Context, ticketID string) (bool, error) {
	return t.registry.Delete(ctx, ticketID)
}

func (t *ticketUseCase) ValidateServiceTicket(
	ctx context.Context,
	serviceTicketID string,
	service string,
) (*ticketDomain.Ticket, error) {
	if kind, ok := ticketDomain.KindFromID(serviceTicketID); !ok || kind != ticketDomain.KindService {
		return nil, ticketDomain.ErrInvalidTicketKind
	}

	serviceTicket, err := t.registry.Get(ctx, serviceTicketID)
	if err != nil {
		return nil, err
	}

	deleted, err := t.registry.Delete(ctx, serviceTicketID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		// Another validation consumed it first.
		return nil, ticketDomain.ErrTicketNotFound
	}

	if t.IsExpired(serviceTicket) {
		return nil, ticketDomain.ErrTicketExpired
	}
	if serviceTicket.Service != service {
		return nil, apperrors.Wrap(ticketDomain.ErrServiceMismatch, "ticket was not issued for this service")
	}

	grantor, err := t.registry.Get(ctx, serviceTicket.GrantorTicketID)
	if err != nil {
		if apperrors.Is(err, ticketDomain.ErrTicketNotFound) {
			return nil, ticketDomain.ErrTicketExpired
		}
		return nil, err
	}
	if t.IsExpired(grantor) {
		return nil, ticketDomain.ErrTicketExpired
	}

	return grantor, nil
}

// NewTicketUseCase creates a new TicketUseCase.
func NewTicketUseCase(
	cfg Config,
	registry TicketRegistry,
	idGenerator ticketService.IDGenerator,
	policy ticketService.AuthenticationPolicy,
	logger *slog.Logger,
) TicketUseCase {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ticketUseCase{
		registry:    registry,
		idGenerator: idGenerator,
		policy:      policy,
		grantorTTL:  cfg.GrantorTTL,
		serviceTTL:  cfg.ServiceTTL,
		now:         now,
		logger:      logger,
	}
}
