package event

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/message"
	"log/slog"
	"time"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/contract"
	"venue-booking/common/otel"
	"venue-booking/common/vars"
	"venue-booking/model"
	"venue-booking/outbound/cms"
	"venue-booking/outbound/ledger"
)

type BookingEvent struct {
	Cms            *cms.CmsOutbound
	Querier        *ledger.Queries
	Publisher      contract.Publisher
	PriceFormatter *message.Printer

	TimeNow func() time.Time
	Timeout time.Duration
}

func (in BookingEvent) CreatedHandler(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	var req model.BookingCreatedEventMessage
	err := json.Unmarshal(msg, &req)
	if err != nil {
		slog.WarnContext(ctx, "booking created event unmarshal error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	ctx, span := otel.Tracer.Start(ctx, "BookingEvent.CreatedHandler")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	reqAttr := slog.Any(constant.LogFieldPayload, req)

	if req.Email == "" {
		slog.WarnContext(ctx, "booking created event has no recipient", reqAttr, traceIdAttr)
		return nil
	}

	venue := in.lookupVenue(ctx, req.VenueId)

	sendEmailReq := model.SendEmailEventMessage{
		To:      req.Email,
		Subject: "Booking Request Received",
		Body:    in.buildConfirmationEmailBody(req, venue),
	}

	err = common.PublishMessage(ctx, in.Publisher, constant.SubjectSendEmail, sendEmailReq)
	if err != nil {
		slog.ErrorContext(ctx, "booking created event publish error", slog.Any(constant.LogFieldErr, err), reqAttr, traceIdAttr)
		common.UtilSpanError(span, err)
		return err
	}

	slog.DebugContext(ctx, "booking created event publish success", reqAttr, traceIdAttr)

	return nil
}

// lookupVenue prefers the refreshed snapshot and only asks the CMS when the
// venue is not cached. The zero Venue means nothing matched.
func (in BookingEvent) lookupVenue(ctx context.Context, venueId string) model.Venue {
	snapshot, _, _ := vars.GetVenues()
	if venue, ok := model.FindVenue(snapshot, venueId); ok {
		return venue
	}

	if in.Cms != nil {
		venue, err := in.Cms.GetVenue(ctx, venueId)
		if err == nil {
			return venue
		}
		slog.WarnContext(ctx, "failed to fetch venue for confirmation email", slog.String("venue_id", venueId), slog.Any(constant.LogFieldErr, err))
	}

	if venue, ok := model.FindVenue(constant.MockVenues, venueId); ok {
		return venue
	}

	return model.Venue{}
}

func (in BookingEvent) buildConfirmationEmailBody(req model.BookingCreatedEventMessage, venue model.Venue) string {
	venueName := venue.Name
	if venueName == "" {
		venueName = fmt.Sprintf("Venue #%s", req.VenueId)
	}

	rate := "On request"
	if venue.PricePerHour > 0 {
		rate = in.PriceFormatter.Sprintf("$%.2f", venue.PricePerHour)
	}

	date := req.BookingDate
	if t, err := common.ParseBookingDate(req.BookingDate); err == nil {
		date = t.Format("Monday, January 2, 2006")
	}

	return fmt.Sprintf(constant.EmailBookingConfirmationTemplate,
		req.Name,
		req.BookingId,
		venueName,
		date,
		rate,
		req.Status,
	)
}

// CompensateCustomerHandler settles a submission whose booking step failed or
// never reported back. The CMS is asked first: a booking for the submitted venue
// and date completes the submission, and a customer that has any booking is
// never deleted. It returns an error while the CMS refuses so the message is
// redelivered.
func (in BookingEvent) CompensateCustomerHandler(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, in.Timeout)
	defer cancel()

	var req model.CompensateCustomerEventMessage
	err := json.Unmarshal(msg, &req)
	if err != nil {
		slog.WarnContext(ctx, "compensate customer event unmarshal error", slog.Any(constant.LogFieldErr, err))
		return nil
	}

	ctx, span := otel.Tracer.Start(ctx, "BookingEvent.CompensateCustomerHandler")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	submissionAttr := slog.String("submission_id", req.SubmissionId)

	slog.InfoContext(ctx, "compensate customer event receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	if req.CustomerId == "" {
		slog.WarnContext(ctx, "compensate customer event without customer id", submissionAttr, traceIdAttr)
		return nil
	}

	bookings, err := in.Cms.ListCustomerBookings(ctx, req.CustomerId)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list customer bookings", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return err
	}

	if booking, ok := model.FindBookingFor(bookings, req.VenueId, req.BookingDate); ok {
		slog.InfoContext(ctx, "booking exists for submission, completing", submissionAttr, traceIdAttr, slog.String("booking_id", booking.RefId()))
		return in.resolve(ctx, req.SubmissionId, constant.SubmissionCompleted, booking.RefId(), "booking found")
	}

	if !req.CustomerCreated {
		return in.resolve(ctx, req.SubmissionId, constant.SubmissionFailed, "", "no booking created")
	}

	if len(bookings) > 0 {
		slog.WarnContext(ctx, "customer has other bookings, keeping it", submissionAttr, traceIdAttr, slog.Int("bookings", len(bookings)))
		return in.resolve(ctx, req.SubmissionId, constant.SubmissionFailed, "", "customer has other bookings")
	}

	err = in.Cms.DeleteCustomer(ctx, req.CustomerId)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete orphaned customer", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return err
	}

	rows, err := in.Querier.MarkSubmissionCompensated(ctx, ledger.MarkSubmissionCompensatedParams{
		ID:         req.SubmissionId,
		CustomerID: pgtype.Text{String: req.CustomerId, Valid: true},
		UpdatedAt:  pgtype.Timestamptz{Time: in.TimeNow(), Valid: true},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to mark submission compensated", submissionAttr, traceIdAttr, slog.Any(constant.LogFieldErr, err))
		return err
	}

	if rows == 0 {
		slog.WarnContext(ctx, "submission was not awaiting compensation", submissionAttr, traceIdAttr)
		return nil
	}

	slog.InfoContext(ctx, "orphaned customer compensated", submissionAttr, traceIdAttr)

	return nil
}

func (in BookingEvent) resolve(ctx context.Context, submissionId, status, bookingId, reason string) error {
	rows, err := in.Querier.ResolvePendingSubmission(ctx, ledger.ResolvePendingSubmissionParams{
		ID:        submissionId,
		Status:    status,
		BookingID: pgtype.Text{String: bookingId, Valid: bookingId != ""},
		Reason:    pgtype.Text{String: reason, Valid: true},
		UpdatedAt: pgtype.Timestamptz{Time: in.TimeNow(), Valid: true},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve pending submission", slog.String("submission_id", submissionId), slog.Any(constant.LogFieldErr, err))
		return err
	}

	if rows == 0 {
		slog.WarnContext(ctx, "submission was not awaiting compensation", slog.String("submission_id", submissionId), slog.String("status", status))
	}

	return nil
}
