package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
	auditService "github.com/allisson/casoauth/internal/audit/service"
	apperrors "github.com/allisson/casoauth/internal/errors"
)

// verifyPageSize bounds how many entries VerifyBatch holds in memory at once.
const verifyPageSize = 500

type auditLogUseCase struct {
	auditLogRepo AuditLogRepository
	signer       auditService.AuditSigner
	secret       []byte
	now          func() time.Time
}

// Record stores an entry with a UUIDv7 id and the current UTC time.
func (a *auditLogUseCase) Record(ctx context.Context, entry *auditDomain.Entry) error {
	if entry == nil || entry.Action == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "audit action required")
	}

	// Both databases keep microseconds; the signature must survive the round trip.
	createdAt := a.now().UTC().Truncate(time.Microsecond)

	auditLog := &auditDomain.AuditLog{
		ID:          uuid.Must(uuid.NewV7()),
		Action:      entry.Action,
		ClientID:    entry.ClientID,
		PrincipalID: entry.PrincipalID,
		TokenHash:   entry.TokenHash,
		Metadata:    entry.Metadata,
		CreatedAt:   createdAt,
	}

	if len(a.secret) > 0 {
		signature, err := a.signer.Sign(a.secret, auditLog)
		if err != nil {
			return apperrors.Wrap(err, "failed to sign audit log")
		}
		auditLog.Signature = signature
		auditLog.IsSigned = true
	}

	if err := a.auditLogRepo.Create(ctx, auditLog); err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}
	return nil
}

func (a *auditLogUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	auditLogs, err := a.auditLogRepo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return auditLogs, nil
}

// VerifyBatch pages through the range. Unsigned entries are counted, not failed.
func (a *auditLogUseCase) VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error) {
	report := &VerificationReport{InvalidLogs: make([]uuid.UUID, 0)}

	for offset := 0; ; offset += verifyPageSize {
		auditLogs, err := a.auditLogRepo.List(ctx, offset, verifyPageSize, &start, &end)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit logs")
		}

		for _, auditLog := range auditLogs {
			report.TotalChecked++
			if !auditLog.IsSigned {
				report.UnsignedCount++
				continue
			}
			report.SignedCount++

			if len(a.secret) == 0 {
				return nil, auditDomain.ErrSigningKeyMissing
			}
			if err := a.signer.Verify(a.secret, auditLog); err != nil {
				if !apperrors.Is(err, auditDomain.ErrSignatureInvalid) {
					return nil, err
				}
				report.InvalidCount++
				report.InvalidLogs = append(report.InvalidLogs, auditLog.ID)
				continue
			}
			report.ValidCount++
		}

		if len(auditLogs) < verifyPageSize {
			return report, nil
		}
	}
}

func (a *auditLogUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must not be negative")
	}

	olderThan := a.now().UTC().AddDate(0, 0, -days)
	count, err := a.auditLogRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}
	return count, nil
}

// NewAuditLogUseCase creates the audit use case. An empty secret records unsigned entries.
func NewAuditLogUseCase(
	auditLogRepo AuditLogRepository,
	signer auditService.AuditSigner,
	secret []byte,
) AuditLogUseCase {
	return &auditLogUseCase{
		auditLogRepo: auditLogRepo,
		signer:       signer,
		secret:       secret,
		now:          time.Now,
	}
}
