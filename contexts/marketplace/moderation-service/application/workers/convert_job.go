package workers

import (
	"context"
	"log/slog"

	application "homeboard/contexts/marketplace/moderation-service/application"
	"homeboard/contexts/marketplace/moderation-service/application/commands"
)

// ConvertJob runs the conversion pipeline on a schedule so approved
// submissions get published without an admin pressing the button.
type ConvertJob struct {
	Convert  commands.ConvertApprovedUseCase
	Disabled bool
	Logger   *slog.Logger
}

func (j ConvertJob) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	if j.Disabled {
		logger.Info("conversion job disabled by feature flag",
			"event", "conversion_job_disabled",
			"module", "marketplace/moderation-service",
			"layer", "worker",
		)
		return nil
	}

	report, err := j.Convert.Execute(ctx)
	if err != nil {
		logger.Error("conversion job failed",
			"event", "conversion_job_failed",
			"module", "marketplace/moderation-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if report.Converted > 0 || len(report.Failures) > 0 {
		logger.Info("conversion job cycle completed",
			"event", "conversion_job_cycle_completed",
			"module", "marketplace/moderation-service",
			"layer", "worker",
			"converted_count", report.Converted,
			"skipped_count", report.Skipped,
			"failure_count", len(report.Failures),
		)
	}
	return nil
}
