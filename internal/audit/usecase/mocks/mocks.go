// Package mocks provides mock implementations of the audit use case and repository for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
	auditUseCase "github.com/allisson/casoauth/internal/audit/usecase"
)

func auditLogsResult(args mock.Arguments) ([]*auditDomain.AuditLog, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.AuditLog), args.Error(1)
}

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase for testing.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Record mocks the Record method.
func (m *MockAuditLogUseCase) Record(ctx context.Context, entry *auditDomain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	return auditLogsResult(m.Called(ctx, offset, limit, createdAtFrom, createdAtTo))
}

// VerifyBatch mocks the VerifyBatch method.
func (m *MockAuditLogUseCase) VerifyBatch(
	ctx context.Context,
	start, end time.Time,
) (*auditUseCase.VerificationReport, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditUseCase.VerificationReport), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method.
func (m *MockAuditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepository for testing.
type MockAuditLogRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	return auditLogsResult(m.Called(ctx, offset, limit, createdAtFrom, createdAtTo))
}

// DeleteOlderThan mocks the DeleteOlderThan method.
func (m *MockAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
