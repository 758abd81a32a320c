// Package mocks provides mock implementations of the ticket use cases for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	ticketDomain "github.com/allisson/casoauth/internal/ticket/domain"
)

// MockTicketUseCase is a mock implementation of TicketUseCase for testing.
type MockTicketUseCase struct {
	mock.Mock
}

func (m *MockTicketUseCase) ticketResult(args mock.Arguments) (*ticketDomain.Ticket, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticketDomain.Ticket), args.Error(1)
}

// CreateGrantorTicket mocks the CreateGrantorTicket method.
func (m *MockTicketUseCase) CreateGrantorTicket(
	ctx context.Context,
	authn ticketDomain.Authentication,
	ttl time.Duration,
) (*ticketDomain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, authn, ttl))
}

// GrantServiceTicket mocks the GrantServiceTicket method.
func (m *MockTicketUseCase) GrantServiceTicket(
	ctx context.Context,
	grantorTicketID string,
	service string,
	ttl time.Duration,
) (*ticketDomain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, grantorTicketID, service, ttl))
}

// GetTicket mocks the GetTicket method.
func (m *MockTicketUseCase) GetTicket(ctx context.Context, ticketID string) (*ticketDomain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, ticketID))
}

// IsExpired mocks the IsExpired method.
func (m *MockTicketUseCase) IsExpired(ticket *ticketDomain.Ticket) bool {
	args := m.Called(ticket)
	return args.Bool(0)
}

// ExpiresIn mocks the ExpiresIn method.
func (m *MockTicketUseCase) ExpiresIn(ticket *ticketDomain.Ticket) time.Duration {
	args := m.Called(ticket)
	return args.Get(0).(time.Duration)
}

// DeleteTicket mocks the DeleteTicket method.
func (m *MockTicketUseCase) DeleteTicket(ctx context.Context, ticketID string) (bool, error) {
	args := m.Called(ctx, ticketID)
	return args.Bool(0), args.Error(1)
}

// ValidateServiceTicket mocks the ValidateServiceTicket method.
func (m *MockTicketUseCase) ValidateServiceTicket(
	ctx context.Context,
	serviceTicketID string,
	service string,
) (*ticketDomain.Ticket, error) {
	return m.ticketResult(m.Called(ctx, serviceTicketID, service))
}
