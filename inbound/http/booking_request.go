package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/contract"
	"venue-booking/common/errs"
	"venue-booking/common/metrics"
	"venue-booking/common/otel"
	"venue-booking/model"
	"venue-booking/outbound/cms"
	"venue-booking/outbound/ledger"
)

const (
	idempotencyKeyHeader     = "Idempotency-Key"
	idempotentReplayedHeader = "Idempotent-Replayed"
)

// BookingRequestHttp runs customer and booking creation as one idempotent saga.
// Each fingerprint yields at most one CMS booking, and a customer created by a
// failed attempt is deleted again.
type BookingRequestHttp struct {
	Cms       *cms.CmsOutbound
	Ledger    *ledger.Queries
	Cache     *redis.Client
	Publisher contract.Publisher
	Validate  *validator.Validate

	TimeNow func() time.Time
	NewId   func() string

	lockTTL       time.Duration
	outcomeTTL    time.Duration
	settleTimeout time.Duration
}

func RegisterBookingRequestHttp(
	mux *http.ServeMux,
	cfg *viper.Viper,
	cmsOutbound *cms.CmsOutbound,
	querier *ledger.Queries,
	cache *redis.Client,
	publisher contract.Publisher,
	validate *validator.Validate,
) *BookingRequestHttp {
	in := &BookingRequestHttp{
		Cms:       cmsOutbound,
		Ledger:    querier,
		Cache:     cache,
		Publisher: publisher,
		Validate:  validate,
		TimeNow:   time.Now,
		NewId:     func() string { return ulid.Make().String() },

		outcomeTTL:    durationOr(cfg.GetDuration("booking.outcome_ttl"), constant.BookingOutcomeDefaultTTL),
		settleTimeout: durationOr(cfg.GetDuration("booking.settle_timeout"), constant.BookingSettleDefault),
	}
	in.lockTTL = bookingLockTTL(
		durationOr(cfg.GetDuration("booking.lock_ttl"), constant.BookingLockDefaultTTL),
		RequestTimeout(cfg),
		in.settleTimeout,
	)

	mux.HandleFunc("POST /api/booking-requests", in.create)

	return in
}

// RequestTimeout is the deadline TimeoutMiddleware puts on every request.
func RequestTimeout(cfg *viper.Viper) time.Duration {
	return durationOr(cfg.GetDuration("server.request_timeout"), constant.RequestDefaultTimeout)
}

// bookingLockTTL keeps the fingerprint lock alive for the longest a request can
// hold it: the request deadline plus the detached settle work that follows it.
func bookingLockTTL(configured, requestTimeout, settleTimeout time.Duration) time.Duration {
	return max(configured, requestTimeout+settleTimeout+constant.BookingLockMargin)
}

func (in BookingRequestHttp) create(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.BookingDate = strings.TrimSpace(req.BookingDate)

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "BookingRequestHttp.create")
	defer span.End()

	fingerprint := bookingFingerprint(r.Header.Get(idempotencyKeyHeader), req)
	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	fingerprintAttr := slog.String("fingerprint", fingerprint)

	slog.InfoContext(ctx, "booking request receive request", slog.Any(constant.LogFieldPayload, req), fingerprintAttr, traceIdAttr)

	outcomeKey := fmt.Sprintf(constant.BookingOutcomeKey, fingerprint)
	cached, err := in.Cache.Get(ctx, outcomeKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.ErrorContext(ctx, "failed to get booking outcome", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if err == nil {
		var outcome model.BookingOutcome
		if jsonErr := json.Unmarshal([]byte(cached), &outcome); jsonErr == nil {
			slog.InfoContext(ctx, "booking request replayed from cache", fingerprintAttr, traceIdAttr)
			metrics.BookingOutcomesTotal.WithLabelValues("replayed").Inc()
			writeOutcome(w, outcome, true)
			return
		}
		slog.WarnContext(ctx, "ignoring unreadable booking outcome", fingerprintAttr, traceIdAttr)
	}

	lockKey := fmt.Sprintf(constant.BookingFingerprintKey, fingerprint)
	locked, err := in.Cache.SetNX(ctx, lockKey, true, in.lockTTL).Result()
	if err != nil {
		slog.ErrorContext(ctx, "failed to set booking lock", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if !locked {
		slog.DebugContext(ctx, "booking request already in progress", fingerprintAttr, traceIdAttr)
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusConflict, Message: "Booking request is already being processed"})
		return
	}

	defer func() {
		if delErr := in.Cache.Del(context.WithoutCancel(ctx), lockKey).Err(); delErr != nil {
			slog.ErrorContext(ctx, "failed to release booking lock", traceIdAttr, slog.Any(constant.LogFieldErr, delErr))
		}
	}()

	done, err := in.Ledger.FindCompletedSubmission(ctx, fingerprint)
	if err == nil {
		outcome := model.BookingOutcome{
			SubmissionId: done.ID,
			UserId:       done.CustomerID.String,
			BookingId:    done.BookingID.String,
		}
		in.cacheOutcome(ctx, outcomeKey, outcome)

		slog.InfoContext(ctx, "booking request replayed from ledger", fingerprintAttr, traceIdAttr)
		metrics.BookingOutcomesTotal.WithLabelValues("replayed").Inc()
		writeOutcome(w, outcome, true)
		return
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		slog.ErrorContext(ctx, "failed to find completed submission", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	submissionId, err := in.Ledger.InsertSubmission(ctx, ledger.InsertSubmissionParams{
		ID:          in.NewId(),
		Fingerprint: fingerprint,
		VenueID:     req.VenueId.String(),
		Email:       req.Email,
		BookingDate: req.BookingDate,
		CreatedAt:   in.timestamp(),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		slog.InfoContext(ctx, "previous booking attempt not settled yet", fingerprintAttr, traceIdAttr)
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusConflict, Message: "A previous attempt for this booking is still being resolved"})
		return
	}

	if err != nil {
		slog.ErrorContext(ctx, "failed to insert submission", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	submissionAttr := slog.String("submission_id", submissionId)
	pending := model.CompensateCustomerEventMessage{
		SubmissionId: submissionId,
		VenueId:      req.VenueId.String(),
		BookingDate:  req.BookingDate,
	}

	userId, created, err := in.Cms.CreateOrIdentifyCustomer(ctx, model.CreateCustomerRequest{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Notes:       req.Notes,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create customer", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		in.fail(ctx, submissionId, err)
		writeErrorResponse(w, err)
		return
	}

	pending.CustomerId = userId
	pending.CustomerCreated = created

	err = in.Ledger.MarkSubmissionCustomer(ctx, ledger.MarkSubmissionCustomerParams{
		ID:              submissionId,
		CustomerID:      pgtype.Text{String: userId, Valid: true},
		CustomerCreated: created,
		UpdatedAt:       in.timestamp(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to mark submission customer", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
		in.compensate(ctx, pending, false, err)
		writeErrorResponse(w, err)
		return
	}

	bookingId, err := in.Cms.CreateBooking(ctx, model.BookingData{
		Customer:    model.RefId(userId),
		Venue:       req.VenueId,
		Notes:       req.Notes,
		Status:      constant.BookingStatusPending,
		BookingDate: req.BookingDate,
		PromoCode:   req.PromoCode,
		Discount:    req.Discount,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create booking", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		in.compensate(ctx, pending, !bookingRejected(err), err)
		writeErrorResponse(w, err)
		return
	}

	outcome := model.BookingOutcome{SubmissionId: submissionId, UserId: userId, BookingId: bookingId}

	in.finish(ctx, outcomeKey, req, outcome)

	slog.InfoContext(ctx, "booking request success", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldResponse, outcome))
	metrics.BookingOutcomesTotal.WithLabelValues(constant.SubmissionCompleted).Inc()

	writeOutcome(w, outcome, false)
}

// finish records a created booking. The CMS booking exists from here on, so
// failures are logged and never compensated; a submission left in
// customer_created is settled by the reconcile cron.
func (in BookingRequestHttp) finish(ctx context.Context, outcomeKey string, req model.BookingRequest, outcome model.BookingOutcome) {
	ctx, cancel := in.detach(ctx)
	defer cancel()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	submissionAttr := slog.String("submission_id", outcome.SubmissionId)

	err := in.Ledger.MarkSubmissionCompleted(ctx, ledger.MarkSubmissionCompletedParams{
		ID:        outcome.SubmissionId,
		BookingID: pgtype.Text{String: outcome.BookingId, Valid: true},
		UpdatedAt: in.timestamp(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to mark submission completed", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
	}

	in.cacheOutcome(ctx, outcomeKey, outcome)

	err = common.PublishMessage(ctx, in.Publisher, constant.SubjectBookingCreated, model.BookingCreatedEventMessage{
		SubmissionId: outcome.SubmissionId,
		BookingId:    outcome.BookingId,
		CustomerId:   outcome.UserId,
		VenueId:      req.VenueId.String(),
		Name:         req.Name,
		Email:        req.Email,
		BookingDate:  req.BookingDate,
		Status:       constant.BookingStatusPending,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish booking created message", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
	}
}

// compensate undoes customer creation after the booking step failed. Customers that
// existed before this attempt are left alone. When the CMS may have created the
// booking anyway, nothing is deleted here and the consumer decides.
func (in BookingRequestHttp) compensate(ctx context.Context, msg model.CompensateCustomerEventMessage, bookingUnknown bool, cause error) {
	ctx, cancel := in.detach(ctx)
	defer cancel()

	ctx, span := otel.Tracer.Start(ctx, "BookingRequestHttp.compensate")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	submissionAttr := slog.String("submission_id", msg.SubmissionId)

	if bookingUnknown {
		slog.WarnContext(ctx, "booking outcome unknown, deferring compensation", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, cause))
		in.deferCompensation(ctx, msg, cause)
		return
	}

	if !msg.CustomerCreated {
		in.fail(ctx, msg.SubmissionId, cause)
		return
	}

	err := in.Cms.DeleteCustomer(ctx, msg.CustomerId)
	if err == nil {
		slog.InfoContext(ctx, "orphaned customer deleted", submissionAttr, traceIdAttr, slog.String("customer_id", msg.CustomerId))
		in.setStatus(ctx, msg.SubmissionId, constant.SubmissionCompensated, cause)
		metrics.BookingOutcomesTotal.WithLabelValues(constant.SubmissionCompensated).Inc()
		return
	}

	slog.ErrorContext(ctx, "failed to delete orphaned customer, deferring", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
	common.UtilSpanError(span, err)

	in.deferCompensation(ctx, msg, cause)
}

func (in BookingRequestHttp) deferCompensation(ctx context.Context, msg model.CompensateCustomerEventMessage, cause error) {
	in.setStatus(ctx, msg.SubmissionId, constant.SubmissionCompensationPending, cause)
	metrics.BookingOutcomesTotal.WithLabelValues(constant.SubmissionCompensationPending).Inc()

	err := common.PublishMessage(ctx, in.Publisher, constant.SubjectBookingCompensateCustomer, msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish compensate customer message",
			slog.String("submission_id", msg.SubmissionId),
			slog.Any(constant.LogFieldErr, err),
		)
	}
}

// fail runs detached so a client that hangs up cannot leave the row in started.
func (in BookingRequestHttp) fail(ctx context.Context, submissionId string, cause error) {
	ctx, cancel := in.detach(ctx)
	defer cancel()

	in.setStatus(ctx, submissionId, constant.SubmissionFailed, cause)
	metrics.BookingOutcomesTotal.WithLabelValues(constant.SubmissionFailed).Inc()
}

func (in BookingRequestHttp) setStatus(ctx context.Context, submissionId, status string, cause error) {
	reason := pgtype.Text{}
	if cause != nil {
		reason = pgtype.Text{String: cause.Error(), Valid: true}
	}

	err := in.Ledger.UpdateSubmissionStatus(ctx, ledger.UpdateSubmissionStatusParams{
		ID:        submissionId,
		Status:    status,
		Reason:    reason,
		UpdatedAt: in.timestamp(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to update submission status",
			slog.String("submission_id", submissionId),
			slog.String("status", status),
			slog.Any(constant.LogFieldErr, err),
		)
	}
}

func (in BookingRequestHttp) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), in.settleTimeout)
}

func (in BookingRequestHttp) cacheOutcome(ctx context.Context, key string, outcome model.BookingOutcome) {
	data, err := json.Marshal(outcome)
	if err != nil {
		return
	}

	if err := in.Cache.Set(ctx, key, string(data), in.outcomeTTL).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to cache booking outcome", slog.Any(constant.LogFieldErr, err))
	}
}

func (in BookingRequestHttp) timestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: in.TimeNow(), Valid: true}
}

func writeOutcome(w http.ResponseWriter, outcome model.BookingOutcome, replayed bool) {
	if replayed {
		w.Header().Set(idempotentReplayedHeader, "true")
	}

	writeJSONResponse(w, http.StatusOK, model.APIResponse{
		Success:   true,
		UserId:    outcome.UserId,
		BookingId: outcome.BookingId,
	})
}

// bookingFingerprint prefers the client's idempotency key and otherwise derives one
// from venue, email and date.
func bookingFingerprint(idempotencyKey string, req model.BookingRequest) string {
	var sum [32]byte
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		sum = sha256.Sum256([]byte("key|" + key))
	} else {
		sum = sha256.Sum256([]byte(strings.Join([]string{
			req.VenueId.String(),
			strings.ToLower(req.Email),
			req.BookingDate,
		}, "|")))
	}

	return hex.EncodeToString(sum[:])
}

// bookingRejected reports whether the CMS answered the booking call with a client
// error. Anything else, a dropped connection or a 5xx, may still have created it.
func bookingRejected(err error) bool {
	var upErr *errs.UpstreamError
	if !errors.As(err, &upErr) {
		return false
	}
	return upErr.StatusCode >= http.StatusBadRequest && upErr.StatusCode < http.StatusInternalServerError
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
