package app

import (
	"context"
	"fmt"

	auditRepository "github.com/allisson/phivault/internal/audit/repository"
	auditUseCase "github.com/allisson/phivault/internal/audit/usecase"
	"github.com/allisson/phivault/internal/config"
	"github.com/allisson/phivault/internal/database"
)

// initAudit builds the audit sink: structured log lines, or the audit_events table.
func (c *Container) initAudit(ctx context.Context) error {
	if c.config.AuditDriver != config.AuditDriverDatabase {
		c.auditEventUseCase = auditUseCase.NewAuditEventUseCase(
			nil,
			auditRepository.NewLogAuditEventRepository(c.logger),
		)
		return nil
	}

	db, err := database.Connect(ctx, database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	c.db = db

	var repo auditUseCase.AuditEventRepository
	switch c.config.DBDriver {
	case "mysql":
		repo = auditRepository.NewMySQLAuditEventRepository(db)
	case "postgres":
		repo = auditRepository.NewPostgreSQLAuditEventRepository(db)
	default:
		return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	c.auditEventUseCase = auditUseCase.NewAuditEventUseCase(database.NewTxManager(db), repo)
	return nil
}
