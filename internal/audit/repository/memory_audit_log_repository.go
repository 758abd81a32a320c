package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
	auditUseCase "github.com/allisson/casoauth/internal/audit/usecase"
)

var (
	_ auditUseCase.AuditLogRepository = (*MemoryAuditLogRepository)(nil)
	_ auditUseCase.AuditLogRepository = (*PostgreSQLAuditLogRepository)(nil)
	_ auditUseCase.AuditLogRepository = (*MySQLAuditLogRepository)(nil)
)

// MemoryAuditLogRepository keeps audit logs in process memory.
type MemoryAuditLogRepository struct {
	mu        sync.RWMutex
	auditLogs []auditDomain.AuditLog
}

func (m *MemoryAuditLogRepository) Create(ctx context.Context, auditLog *auditDomain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.auditLogs = append(m.auditLogs, *auditLog)
	return nil
}

func (m *MemoryAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*auditDomain.AuditLog, 0)
	for i := range m.auditLogs {
		auditLog := m.auditLogs[i]
		if createdAtFrom != nil && auditLog.CreatedAt.Before(*createdAtFrom) {
			continue
		}
		if createdAtTo != nil && auditLog.CreatedAt.After(*createdAtTo) {
			continue
		}
		matched = append(matched, &auditLog)
	}

	// UUIDv7 ids sort by creation time.
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return make([]*auditDomain.AuditLog, 0), nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *MemoryAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.auditLogs[:0:0]
	var count int64
	for _, auditLog := range m.auditLogs {
		if auditLog.CreatedAt.Before(olderThan) {
			count++
			continue
		}
		kept = append(kept, auditLog)
	}
	if !dryRun {
		m.auditLogs = kept
	}
	return count, nil
}

// NewMemoryAuditLogRepository creates an empty in-memory AuditLog repository.
func NewMemoryAuditLogRepository() *MemoryAuditLogRepository {
	return &MemoryAuditLogRepository{}
}
