package form

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"strings"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/errs"
	"venue-booking/common/otel"
	"venue-booking/model"
)

type FailureMode string

const (
	FailureRedirect FailureMode = "redirect"
	FailureInline   FailureMode = "inline"
)

const DefaultRedirectTo = "/contact"

type BookingAPI interface {
	CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (model.APIResponse, error)
	CreateBooking(ctx context.Context, req model.CreateBookingRequest) (model.APIResponse, error)
}

// Values is the editable state of the booking form. VenueId comes from the
// page the form sits on and survives a reset.
type Values struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10,max=30"`
	Notes       string `json:"notes" validate:"max=2000"`
	Terms       bool   `json:"terms" validate:"required"`
	VenueId     string `json:"venueId" validate:"required"`
	BookingDate string `json:"-"`
}

type Result struct {
	Success     bool
	UserId      string
	BookingId   string
	FieldErrors map[string]string
	Notice      string
	RedirectTo  string
}

type BookingForm struct {
	API         BookingAPI
	Validate    *validator.Validate
	FailureMode FailureMode
	RedirectTo  string

	Values Values
}

func New(api BookingAPI, validate *validator.Validate, mode FailureMode) *BookingForm {
	if mode != FailureInline {
		mode = FailureRedirect
	}

	return &BookingForm{
		API:         api,
		Validate:    validate,
		FailureMode: mode,
		RedirectTo:  DefaultRedirectTo,
	}
}

// Submit runs the booking steps in order and stops at the first failure. The
// booking call is only issued once the customer call has resolved with an id.
func (f *BookingForm) Submit(ctx context.Context) Result {
	ctx, span := otel.Tracer.Start(ctx, "BookingForm.Submit")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	values := f.Values
	values.Name = strings.TrimSpace(values.Name)
	values.Email = strings.TrimSpace(values.Email)
	values.PhoneNumber = strings.TrimSpace(values.PhoneNumber)
	values.BookingDate = strings.TrimSpace(values.BookingDate)

	if err := f.Validate.Struct(values); err != nil {
		var validationErr validator.ValidationErrors
		if !errors.As(err, &validationErr) {
			return f.fail(ctx, err)
		}

		fieldErrors := make(map[string]string, len(validationErr))
		for _, fieldErr := range validationErr {
			fieldErrors[fieldErr.Field()] = fieldMessage(fieldErr)
		}

		slog.DebugContext(ctx, "booking form invalid", traceIdAttr, slog.Any("fields", fieldErrors))
		return Result{FieldErrors: fieldErrors}
	}

	if values.BookingDate == "" {
		return Result{Notice: constant.MessageMissingDate}
	}

	if _, err := common.ParseBookingDate(values.BookingDate); err != nil {
		return Result{Notice: constant.MessageMissingDate}
	}

	customerResp, err := f.API.CreateCustomer(ctx, model.CreateCustomerRequest{
		Name:        values.Name,
		Email:       values.Email,
		PhoneNumber: values.PhoneNumber,
		Notes:       values.Notes,
	})
	if err == nil && !customerResp.Success {
		err = &errs.UpstreamError{Message: customerResp.Message}
	}
	if err != nil {
		slog.ErrorContext(ctx, "booking form customer step failed", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return f.fail(ctx, err)
	}

	if customerResp.UserId == "" {
		err = &errs.UpstreamError{Message: constant.MessageMissingCustomerId}
		common.UtilSpanError(span, err)
		return f.fail(ctx, err)
	}

	bookingResp, err := f.API.CreateBooking(ctx, model.CreateBookingRequest{
		Data: model.BookingData{
			Customer:    model.RefId(customerResp.UserId),
			Venue:       model.RefId(values.VenueId),
			Notes:       values.Notes,
			Status:      constant.BookingStatusPending,
			BookingDate: values.BookingDate,
		},
	})
	if err == nil && !bookingResp.Success {
		err = &errs.UpstreamError{Message: bookingResp.Message}
	}
	if err != nil {
		slog.ErrorContext(ctx, "booking form booking step failed", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		return f.fail(ctx, err)
	}

	slog.InfoContext(ctx, "booking form submitted", traceIdAttr,
		slog.String("user_id", customerResp.UserId),
		slog.String("booking_id", bookingResp.BookingId),
	)

	f.Reset()

	return Result{Success: true, UserId: customerResp.UserId, BookingId: bookingResp.BookingId}
}

func (f *BookingForm) Reset() {
	f.Values = Values{VenueId: f.Values.VenueId}
}

func (f *BookingForm) fail(ctx context.Context, err error) Result {
	if f.FailureMode == FailureInline {
		return Result{Notice: failureMessage(err)}
	}

	redirectTo := f.RedirectTo
	if redirectTo == "" {
		redirectTo = DefaultRedirectTo
	}

	slog.DebugContext(ctx, "booking form redirecting after failure", slog.String("to", redirectTo))
	return Result{RedirectTo: redirectTo, Notice: failureMessage(err)}
}

func failureMessage(err error) string {
	if errors.Is(err, errs.ErrUpstreamUnavailable) {
		return constant.MessageUpstreamUnreachable
	}

	var upErr *errs.UpstreamError
	if errors.As(err, &upErr) && upErr.Message != "" {
		return upErr.Message
	}

	return "Failed to submit booking. Please try again."
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		if fieldErr.Field() == "terms" {
			return "You must accept the terms and conditions"
		}
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fieldErr.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fieldErr.Param())
	default:
		return "Invalid value"
	}
}
