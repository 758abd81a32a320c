// Package usecase records and verifies the audit trail of the token engine.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
)

// AuditLogRepository persists audit entries.
type AuditLogRepository interface {
	// Create stores a new entry.
	Create(ctx context.Context, auditLog *auditDomain.AuditLog) error

	// List returns entries newest first. Nil bounds are open; both bounds are inclusive.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditLog, error)

	// DeleteOlderThan removes entries created before olderThan, or only counts them when dryRun is set.
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// VerificationReport summarizes a VerifyBatch run.
type VerificationReport struct {
	TotalChecked  int64
	SignedCount   int64
	UnsignedCount int64
	ValidCount    int64
	InvalidCount  int64
	InvalidLogs   []uuid.UUID
}

// AuditLogUseCase records what the token engine did and checks the trail for tampering.
type AuditLogUseCase interface {
	// Record stores an entry, signed when a signing key is configured.
	Record(ctx context.Context, entry *auditDomain.Entry) error

	// List returns entries newest first within optional inclusive bounds.
	List(
		ctx context.Context,
		offset, limit int,
		createdAtFrom, createdAtTo *time.Time,
	) ([]*auditDomain.AuditLog, error)

	// VerifyBatch checks the signature of every entry created in [start, end].
	VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error)

	// DeleteOlderThan removes entries older than days, or counts them when dryRun is set.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
