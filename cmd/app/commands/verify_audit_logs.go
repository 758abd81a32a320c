package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditUseCase "github.com/allisson/casoauth/internal/audit/usecase"
)

// errAuditIntegrity is returned when at least one signed entry fails verification.
var errAuditIntegrity = errors.New("audit log integrity check failed")

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// RunVerifyAuditLogs checks the signature of every audit entry in [startDate, endDate].
// A date without a time covers the whole day as an end bound.
func RunVerifyAuditLogs(
	ctx context.Context,
	auditLogUseCase auditUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	format string,
) error {
	start, err := parseDate(startDate, false)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := parseDate(endDate, true)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if !end.After(start) {
		return errors.New("end date must be after start date")
	}

	logger.Info("verifying audit logs", slog.Time("start", start), slog.Time("end", end))

	report, err := auditLogUseCase.VerifyBatch(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to verify audit logs: %w", err)
	}

	if format == "json" {
		writeJSON(writer, map[string]any{
			"total_checked":  report.TotalChecked,
			"signed_count":   report.SignedCount,
			"unsigned_count": report.UnsignedCount,
			"valid_count":    report.ValidCount,
			"invalid_count":  report.InvalidCount,
			"invalid_logs":   report.InvalidLogs,
			"passed":         report.InvalidCount == 0,
		})
	} else {
		writeVerifyText(writer, report, start, end)
	}

	logger.Info("audit logs verified",
		slog.Int64("total_checked", report.TotalChecked),
		slog.Int64("invalid", report.InvalidCount),
		slog.Int64("unsigned", report.UnsignedCount),
	)

	if report.InvalidCount > 0 {
		return fmt.Errorf("%w: %d invalid signature(s)", errAuditIntegrity, report.InvalidCount)
	}
	return nil
}

// parseDate accepts "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS" in UTC.
func parseDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(dateTimeLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS, got %q", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return t, nil
}

func writeVerifyText(writer io.Writer, report *auditUseCase.VerificationReport, start, end time.Time) {
	_, _ = fmt.Fprintf(writer, "Audit log verification from %s to %s\n\n",
		start.Format(dateTimeLayout), end.Format(dateTimeLayout))
	_, _ = fmt.Fprintf(writer, "Checked:   %d\n", report.TotalChecked)
	_, _ = fmt.Fprintf(writer, "Signed:    %d\n", report.SignedCount)
	_, _ = fmt.Fprintf(writer, "Unsigned:  %d\n", report.UnsignedCount)
	_, _ = fmt.Fprintf(writer, "Valid:     %d\n", report.ValidCount)
	_, _ = fmt.Fprintf(writer, "Invalid:   %d\n\n", report.InvalidCount)

	switch {
	case report.InvalidCount > 0:
		_, _ = fmt.Fprintln(writer, "Entries with invalid signatures:")
		for _, id := range report.InvalidLogs {
			_, _ = fmt.Fprintf(writer, "  %s\n", id)
		}
		_, _ = fmt.Fprintln(writer, "\nStatus: FAILED")
	case report.TotalChecked == 0:
		_, _ = fmt.Fprintln(writer, "Status: no entries in range")
	default:
		_, _ = fmt.Fprintln(writer, "Status: PASSED")
	}
}
