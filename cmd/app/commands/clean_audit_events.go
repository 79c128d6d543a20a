package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditUseCase "github.com/allisson/phivault/internal/audit/usecase"
)

// RunCleanAuditEvents deletes audit events older than days, or only counts them with dryRun.
func RunCleanAuditEvents(
	ctx context.Context,
	auditEventUseCase auditUseCase.AuditEventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("cleaning audit events", slog.Int("days", days), slog.Bool("dry_run", dryRun))

	count, err := auditEventUseCase.DeleteOlderThan(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to delete audit events: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		}); err != nil {
			return err
		}
	} else if dryRun {
		fmt.Fprintf(writer, "Dry-run mode: Would delete %d audit event(s) older than %d day(s)\n", count, days)
	} else {
		fmt.Fprintf(writer, "Successfully deleted %d audit event(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)
	return nil
}
