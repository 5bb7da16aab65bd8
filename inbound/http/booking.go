package http

import (
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
	"strings"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/otel"
	"venue-booking/model"
	"venue-booking/outbound/cms"
)

type BookingHttp struct {
	Cms      *cms.CmsOutbound
	Validate *validator.Validate
}

func RegisterBookingHttp(mux *http.ServeMux, cmsOutbound *cms.CmsOutbound, validate *validator.Validate) *BookingHttp {
	in := &BookingHttp{Cms: cmsOutbound, Validate: validate}

	mux.HandleFunc("POST /api/bookings", in.create)

	return in
}

func (in BookingHttp) create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	req.Data.BookingDate = strings.TrimSpace(req.Data.BookingDate)
	if req.Data.Status == "" {
		req.Data.Status = constant.BookingStatusPending
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "BookingHttp.create")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "create booking receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	bookingId, err := in.Cms.CreateBooking(ctx, req.Data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create booking", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		writeErrorResponse(w, err)
		return
	}

	slog.InfoContext(ctx, "create booking success", traceIdAttr, slog.Any(constant.LogFieldResponse, bookingId))

	writeJSONResponse(w, http.StatusOK, model.APIResponse{Success: true, BookingId: bookingId})
}
