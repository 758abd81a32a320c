package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testAuditLog(createdAt time.Time) *auditDomain.AuditLog {
	return &auditDomain.AuditLog{
		ID:          uuid.Must(uuid.NewV7()),
		Action:      auditDomain.ActionGrantRefreshToken,
		ClientID:    "acme",
		PrincipalID: "u1",
		TokenHash:   "abc123",
		Metadata:    map[string]any{"scopes": "openid"},
		Signature:   []byte("signature"),
		IsSigned:    true,
		CreatedAt:   createdAt,
	}
}

var auditLogRowColumns = []string{
	"id", "action", "client_id", "principal_id", "token_hash",
	"metadata", "signature", "is_signed", "created_at",
}

func TestPostgreSQLAuditLogRepository_Create(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta(`INSERT INTO audit_logs`)
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		db, mock := newSQLMock(t)
		auditLog := testAuditLog(createdAt)

		mock.ExpectExec(insert).
			WithArgs(
				auditLog.ID, "grant_refresh_token", "acme", "u1", "abc123",
				[]byte(`{"scopes":"openid"}`), []byte("signature"), true, createdAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPostgreSQLAuditLogRepository(db).Create(ctx, auditLog)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NilMetadata", func(t *testing.T) {
		db, mock := newSQLMock(t)
		auditLog := testAuditLog(createdAt)
		auditLog.Metadata = nil

		mock.ExpectExec(insert).
			WithArgs(
				auditLog.ID, "grant_refresh_token", "acme", "u1", "abc123",
				nil, []byte("signature"), true, createdAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPostgreSQLAuditLogRepository(db).Create(ctx, auditLog)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error", func(t *testing.T) {
		db, mock := newSQLMock(t)

		mock.ExpectExec(insert).WillReturnError(errors.New("connection reset"))

		err := NewPostgreSQLAuditLogRepository(db).Create(ctx, testAuditLog(createdAt))
		assert.ErrorContains(t, err, "failed to create audit log")
	})
}

func TestPostgreSQLAuditLogRepository_List(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success_WithBounds", func(t *testing.T) {
		db, mock := newSQLMock(t)
		auditLog := testAuditLog(createdAt)
		from := createdAt.Add(-time.Hour)
		to := createdAt.Add(time.Hour)

		rows := sqlmock.NewRows(auditLogRowColumns).AddRow(
			auditLog.ID.String(), "grant_refresh_token", "acme", "u1", "abc123",
			[]byte(`{"scopes":"openid"}`), []byte("signature"), true, createdAt,
		)
		mock.ExpectQuery(regexp.QuoteMeta(
			`FROM audit_logs WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		)).
			WithArgs(from, to, 10, 0).
			WillReturnRows(rows)

		auditLogs, err := NewPostgreSQLAuditLogRepository(db).List(ctx, 0, 10, &from, &to)
		require.NoError(t, err)
		require.Len(t, auditLogs, 1)
		assert.Equal(t, auditLog.ID, auditLogs[0].ID)
		assert.Equal(t, auditDomain.ActionGrantRefreshToken, auditLogs[0].Action)
		assert.Equal(t, map[string]any{"scopes": "openid"}, auditLogs[0].Metadata)
		assert.True(t, auditLogs[0].IsSigned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NoBounds", func(t *testing.T) {
		db, mock := newSQLMock(t)

		rows := sqlmock.NewRows(auditLogRowColumns).AddRow(
			uuid.Must(uuid.NewV7()).String(), "collect_expired", "", "", "",
			nil, nil, false, createdAt,
		)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`)).
			WithArgs(5, 10).
			WillReturnRows(rows)

		auditLogs, err := NewPostgreSQLAuditLogRepository(db).List(ctx, 10, 5, nil, nil)
		require.NoError(t, err)
		require.Len(t, auditLogs, 1)
		assert.Nil(t, auditLogs[0].Metadata)
		assert.False(t, auditLogs[0].IsSigned)
	})

	t.Run("Error", func(t *testing.T) {
		db, mock := newSQLMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM audit_logs`)).WillReturnError(errors.New("timeout"))

		_, err := NewPostgreSQLAuditLogRepository(db).List(ctx, 0, 10, nil, nil)
		assert.ErrorContains(t, err, "failed to list audit logs")
	})
}

func TestPostgreSQLAuditLogRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	olderThan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("DryRun", func(t *testing.T) {
		db, mock := newSQLMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM audit_logs WHERE created_at < $1`)).
			WithArgs(olderThan).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := NewPostgreSQLAuditLogRepository(db).DeleteOlderThan(ctx, olderThan, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Delete", func(t *testing.T) {
		db, mock := newSQLMock(t)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM audit_logs WHERE created_at < $1`)).
			WithArgs(olderThan).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := NewPostgreSQLAuditLogRepository(db).DeleteOlderThan(ctx, olderThan, false)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLAuditLogRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock := newSQLMock(t)
	auditLog := testAuditLog(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	id, err := auditLog.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO audit_logs`)).
		WithArgs(
			id, "grant_refresh_token", "acme", "u1", "abc123",
			[]byte(`{"scopes":"openid"}`), []byte("signature"), true, auditLog.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewMySQLAuditLogRepository(db).Create(ctx, auditLog)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditLogRepository_List(t *testing.T) {
	ctx := context.Background()
	db, mock := newSQLMock(t)
	auditLog := testAuditLog(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	id, err := auditLog.ID.MarshalBinary()
	require.NoError(t, err)
	from := auditLog.CreatedAt.Add(-time.Hour)

	rows := sqlmock.NewRows(auditLogRowColumns).AddRow(
		id, "grant_refresh_token", "acme", "u1", "abc123",
		[]byte(`{"scopes":"openid"}`), []byte("signature"), true, auditLog.CreatedAt,
	)
	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM audit_logs WHERE created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
	)).
		WithArgs(from, 10, 0).
		WillReturnRows(rows)

	auditLogs, err := NewMySQLAuditLogRepository(db).List(ctx, 0, 10, &from, nil)
	require.NoError(t, err)
	require.Len(t, auditLogs, 1)
	assert.Equal(t, auditLog.ID, auditLogs[0].ID)
	assert.Equal(t, []byte("signature"), auditLogs[0].Signature)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditLogRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	db, mock := newSQLMock(t)
	olderThan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM audit_logs WHERE created_at < ?`)).
		WithArgs(olderThan).
		WillReturnResult(sqlmock.NewResult(0, 2))

	count, err := NewMySQLAuditLogRepository(db).DeleteOlderThan(ctx, olderThan, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryAuditLogRepository(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	repo := NewMemoryAuditLogRepository()
	oldest := testAuditLog(base)
	middle := testAuditLog(base.Add(time.Hour))
	newest := testAuditLog(base.Add(2 * time.Hour))
	for _, auditLog := range []*auditDomain.AuditLog{middle, oldest, newest} {
		require.NoError(t, repo.Create(ctx, auditLog))
	}

	t.Run("List_NewestFirst", func(t *testing.T) {
		auditLogs, err := repo.List(ctx, 0, 10, nil, nil)
		require.NoError(t, err)
		require.Len(t, auditLogs, 3)
		assert.Equal(t, newest.ID, auditLogs[0].ID)
		assert.Equal(t, middle.ID, auditLogs[1].ID)
		assert.Equal(t, oldest.ID, auditLogs[2].ID)
	})

	t.Run("List_InclusiveBoundsAndPaging", func(t *testing.T) {
		from := middle.CreatedAt
		to := newest.CreatedAt

		auditLogs, err := repo.List(ctx, 1, 10, &from, &to)
		require.NoError(t, err)
		require.Len(t, auditLogs, 1)
		assert.Equal(t, middle.ID, auditLogs[0].ID)

		auditLogs, err = repo.List(ctx, 5, 10, &from, &to)
		require.NoError(t, err)
		assert.Empty(t, auditLogs)
	})

	t.Run("DeleteOlderThan", func(t *testing.T) {
		count, err := repo.DeleteOlderThan(ctx, newest.CreatedAt, true)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		auditLogs, err := repo.List(ctx, 0, 10, nil, nil)
		require.NoError(t, err)
		assert.Len(t, auditLogs, 3)

		count, err = repo.DeleteOlderThan(ctx, newest.CreatedAt, false)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		auditLogs, err = repo.List(ctx, 0, 10, nil, nil)
		require.NoError(t, err)
		require.Len(t, auditLogs, 1)
		assert.Equal(t, newest.ID, auditLogs[0].ID)
	})
}
