package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditUseCase "github.com/allisson/casoauth/internal/audit/usecase"
)

// RunCleanAuditLogs deletes audit entries older than days. A dry run only reports the count.
func RunCleanAuditLogs(
	ctx context.Context,
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must not be negative, got %d", days)
	}

	logger.Info("cleaning audit logs", slog.Int("days", days), slog.Bool("dry_run", dryRun))

	count, err := auditLogUseCase.DeleteOlderThan(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete audit logs: %w", err)
	}

	switch {
	case format == "json":
		writeJSON(writer, map[string]any{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		})
	case dryRun:
		_, _ = fmt.Fprintf(writer, "Would delete %d audit log(s) older than %d day(s)\n", count, days)
	default:
		_, _ = fmt.Fprintf(writer, "Deleted %d audit log(s) older than %d day(s)\n", count, days)
	}

	logger.Info("audit logs cleaned", slog.Int64("count", count), slog.Bool("dry_run", dryRun))

	return nil
}
