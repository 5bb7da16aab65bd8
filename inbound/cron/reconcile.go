package cron

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/spf13/viper"
	"log/slog"
	"time"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/contract"
	"venue-booking/common/metrics"
	"venue-booking/common/otel"
	"venue-booking/model"
	"venue-booking/outbound/ledger"
)

const (
	defaultReconcileBatch = 50
	defaultReconcileAfter = 15 * time.Minute
)

// ReconcileCron finds booking attempts that never settled, whether they died
// between customer and booking creation or lost their compensation message, and
// hands them to the compensation consumer. The consumer decides from the CMS
// whether the booking exists, so rows are handed over whatever customer_created says.
type ReconcileCron struct {
	Cfg       *viper.Viper
	Querier   *ledger.Queries
	Publisher contract.Publisher

	TimeNow func() time.Time
}

func (in ReconcileCron) Start(ctx context.Context) {
	ticker := time.NewTicker(in.Cfg.GetDuration("cron.reconcile.interval"))
	defer ticker.Stop()

	slog.Info("reconcile cron started")

	for {
		select {
		case <-ticker.C:
			if err := in.reconcile(ctx); err != nil {
				slog.ErrorContext(ctx, "reconcile run failed", slog.Any(constant.LogFieldErr, err))
			}
		case <-ctx.Done():
			slog.Info("reconcile cron stopped")
			return
		}
	}
}

func (in ReconcileCron) reconcile(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, in.Cfg.GetDuration("cron.reconcile.timeout"))
	defer cancel()

	ctx, span := otel.Tracer.Start(ctx, "ReconcileCron.reconcile")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	// Attempts younger than this may still be running inside a request.
	after := in.Cfg.GetDuration("booking.reconcile_after")
	if after <= 0 {
		after = defaultReconcileAfter
	}

	now := in.TimeNow()
	before := pgtype.Timestamptz{Time: now.Add(-after), Valid: true}
	updatedAt := pgtype.Timestamptz{Time: now, Valid: true}

	limit := in.Cfg.GetInt32("cron.reconcile.batch_size")
	if limit <= 0 {
		limit = defaultReconcileBatch
	}

	stale, err := in.Querier.ListStaleSubmissions(ctx, ledger.ListStaleSubmissionsParams{Before: before, Limit: limit})
	if err != nil {
		common.UtilSpanError(span, err)
		return fmt.Errorf("list stale submissions: %w", err)
	}

	for _, row := range stale {
		submissionAttr := slog.String("submission_id", row.ID)

		status, reason := constant.SubmissionCompensationPending, "stale"
		if !row.CustomerID.Valid {
			status, reason = constant.SubmissionFailed, "customer unknown"
		}

		// Bumps updated_at so the row waits another window before it is handed over again.
		err = in.Querier.UpdateSubmissionStatus(ctx, ledger.UpdateSubmissionStatusParams{
			ID:        row.ID,
			Status:    status,
			Reason:    pgtype.Text{String: reason, Valid: true},
			UpdatedAt: updatedAt,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to mark stale submission", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
			continue
		}

		if !row.CustomerID.Valid {
			slog.WarnContext(ctx, "stale submission has no customer, marked failed", submissionAttr, traceIdAttr)
			continue
		}

		err = common.PublishMessage(ctx, in.Publisher, constant.SubjectBookingCompensateCustomer, model.CompensateCustomerEventMessage{
			SubmissionId:    row.ID,
			CustomerId:      row.CustomerID.String,
			CustomerCreated: row.CustomerCreated,
			VenueId:         row.VenueID,
			BookingDate:     row.BookingDate,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to publish stale submission compensation", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
			continue
		}

		metrics.BookingOutcomesTotal.WithLabelValues("reconciled").Inc()
	}

	failed, err := in.Querier.FailAbandonedSubmissions(ctx, ledger.FailAbandonedSubmissionsParams{Before: before, UpdatedAt: updatedAt})
	if err != nil {
		common.UtilSpanError(span, err)
		return fmt.Errorf("fail abandoned submissions: %w", err)
	}

	slog.InfoContext(ctx, "reconcile run finished", traceIdAttr, slog.Int("stale", len(stale)), slog.Int64("abandoned", failed))

	return nil
}
