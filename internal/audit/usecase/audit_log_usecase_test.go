package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
	auditService "github.com/allisson/casoauth/internal/audit/service"
	auditUseCase "github.com/allisson/casoauth/internal/audit/usecase"
	auditMocks "github.com/allisson/casoauth/internal/audit/usecase/mocks"
	apperrors "github.com/allisson/casoauth/internal/errors"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func grantEntry() *auditDomain.Entry {
	return &auditDomain.Entry{
		Action:      auditDomain.ActionGrantOnlineAccessToken,
		ClientID:    "acme",
		PrincipalID: "u1",
		TokenHash:   "digest",
		Metadata:    map[string]any{"scopes": []string{"openid"}},
	}
}

func TestAuditLogUseCase_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Signed", func(t *testing.T) {
		repo := &auditMocks.MockAuditLogRepository{}
		var stored *auditDomain.AuditLog
		repo.On("Create", ctx, mock.AnythingOfType("*domain.AuditLog")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*auditDomain.AuditLog) }).
			Return(nil).
			Once()

		useCase := auditUseCase.NewAuditLogUseCase(repo, auditService.NewAuditSigner(), testSecret)
		require.NoError(t, useCase.Record(ctx, grantEntry()))

		require.NotNil(t, stored)
		assert.Equal(t, auditDomain.ActionGrantOnlineAccessToken, stored.Action)
		assert.Equal(t, "acme", stored.ClientID)
		assert.True(t, stored.IsSigned)
		assert.Len(t, stored.Signature, 32)
		assert.Equal(t, uuid.Version(7), stored.ID.Version())
		assert.Equal(t, stored.CreatedAt, stored.CreatedAt.Truncate(time.Microsecond))
		assert.NoError(t, auditService.NewAuditSigner().Verify(testSecret, stored))
		repo.AssertExpectations(t)
	})

	t.Run("Success_UnsignedWithoutSecret", func(t *testing.T) {
		repo := &auditMocks.MockAuditLogRepository{}
		repo.On("Create", ctx, mock.MatchedBy(func(log *auditDomain.AuditLog) bool {
			return !log.IsSigned && log.Signature == nil
		})).Return(nil).Once()

		useCase := auditUseCase.NewAuditLogUseCase(repo, auditService.NewAuditSigner(), nil)
		require.NoError(t, useCase.Record(ctx, grantEntry()))
		repo.AssertExpectations(t)
	})

	t.Run("Error_MissingAction", func(t *testing.T) {
		useCase := auditUseCase.NewAuditLogUseCase(&auditMocks.MockAuditLogRepository{}, auditService.NewAuditSigner(), nil)

		err := useCase.Record(ctx, &auditDomain.Entry{ClientID: "acme"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &auditMocks.MockAuditLogRepository{}
		repo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		useCase := auditUseCase.NewAuditLogUseCase(repo, auditService.NewAuditSigner(), testSecret)
		err := useCase.Record(ctx, grantEntry())
		assert.ErrorContains(t, err, "failed to create audit log")
	})
}

func signedLog(t *testing.T, action auditDomain.Action) *auditDomain.AuditLog {
	t.Helper()

	log := &auditDomain.AuditLog{
		ID:          uuid.Must(uuid.NewV7()),
		Action:      action,
		ClientID:    "acme",
		PrincipalID: "u1",
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		IsSigned:    true,
	}
	signature, err := auditService.NewAuditSigner().Sign(testSecret, log)
	require.NoError(t, err)
	log.Signature = signature
	return log
}

func TestAuditLogUseCase_VerifyBatch(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	t.Run("Success_MixedEntries", func(t *testing.T) {
		tampered := signedLog(t, auditDomain.ActionRevokeToken)
		tampered.PrincipalID = "u2"
		logs := []*auditDomain.AuditLog{
			signedLog(t, auditDomain.ActionGrantRefreshToken),
			tampered,
			{Action: auditDomain.ActionCollectExpired, CreatedAt: start},
		}

		repo := &auditMocks.MockAuditLogRepository{}
		repo.On("List", ctx, 0, mock.AnythingOfType("int"), &start, &end).Return(logs, nil).Once()

		useCase := auditUseCase.NewAuditLogUseCase(repo, auditService.NewAuditSigner(), testSecret)
		report, err := useCase.VerifyBatch(ctx, start, end)
		require.NoError(t, err)

		assert.Equal(t, int64(3), report.TotalChecked)
		assert.Equal(t, int64(2), report.SignedCount)
		assert.Equal(t, int64(1), report.UnsignedCount)
		assert.Equal(t, int64(1), report.ValidCount)
		assert.Equal(t, int64(1), report.InvalidCount)
		assert.Equal(t, tampered.ID, report.InvalidLogs[0])
		repo.AssertExpectations(t)
	})

	t.Run("Error_SignedEntriesWithoutSecret", func(t *testing.T) {
		repo := &auditMocks.MockAuditLogRepository{}
		repo.On("List", ctx, 0, mock.AnythingOfType("int"), &start, &end).
			Return([]*auditDomain.AuditLog{signedLog(t, auditDomain.ActionGrantRefreshToken)}, nil).
			Once()

		useCase := auditUseCase.NewAuditLogUseCase(repo, auditService.NewAuditSigner(), nil)
		_, err := useCase.VerifyBatch(ctx, start, end)
		assert.ErrorIs(t, err, auditDomain.ErrSigningKeyMissing)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &auditMocks.MockAuditLogRepository{}
		repo.On("List", ctx, 0, mock.AnythingOfType("int"), &start, &end).Return(nil, errors.New("db down")).Once()

		useCase := auditUseCase.NewAuditLogUseCase(repo, auditService.NewAuditSigner(), testSecret)
		_, err := useCase.VerifyBatch(ctx, start, end)
		assert.Error(t, err)
	})
}

func TestAuditLogUseCase_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_DryRun", func(t *testing.T) {
		repo := &auditMocks.MockAuditLogRepository{}
		repo.On("DeleteOlderThan", ctx, mock.MatchedBy(func(olderThan time.Time) bool {
			age := time.Since(olderThan)
			return age > 29*24*time.Hour && age < 31*24*time.Hour
		}), true).Return(int64(4), nil).Once()

		useCase := auditUseCase.NewAuditLogUseCase(repo, auditService.NewAuditSigner(), nil)
		count, err := useCase.DeleteOlderThan(ctx, 30, true)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		repo.AssertExpectations(t)
	})

	t.Run("Error_NegativeDays", func(t *testing.T) {
		useCase := auditUseCase.NewAuditLogUseCase(&auditMocks.MockAuditLogRepository{}, auditService.NewAuditSigner(), nil)

		_, err := useCase.DeleteOlderThan(ctx, -1, false)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
