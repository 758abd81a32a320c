package app

import (
	"encoding/base64"
	"fmt"
	"sync"

	auditRepository "github.com/allisson/casoauth/internal/audit/repository"
	auditService "github.com/allisson/casoauth/internal/audit/service"
	auditUseCase "github.com/allisson/casoauth/internal/audit/usecase"
)

type auditComponents struct {
	auditLogRepository auditUseCase.AuditLogRepository
	auditLogUseCase    auditUseCase.AuditLogUseCase

	auditLogRepositoryInit sync.Once
	auditLogUseCaseInit    sync.Once
}

// AuditLogRepository returns the audit log repository based on database driver.
func (c *Container) AuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	var err error
	c.auditLogRepositoryInit.Do(func() {
		c.auditLogRepository, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepository"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepository, nil
}

// AuditLogUseCase returns the audit log use case, signing with AUDIT_SIGNING_KEY when set.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

func (c *Container) initAuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	if c.config.DBDriver == driverMemory {
		return auditRepository.NewMemoryAuditLogRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLAuditLogRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	auditLogRepository, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit log use case: %w", err)
	}

	var secret []byte
	if c.config.AuditSigningKey != "" {
		secret, err = base64.StdEncoding.DecodeString(c.config.AuditSigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audit signing key: %w", err)
		}
	}

	return auditUseCase.NewAuditLogUseCase(auditLogRepository, auditService.NewAuditSigner(), secret), nil
}
