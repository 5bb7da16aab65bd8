package http

import (
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/contract"
	"venue-booking/common/errs"
	"venue-booking/common/otel"
	"venue-booking/model"
)

type ContactHttp struct {
	Publisher contract.Publisher
	Validate  *validator.Validate

	TimeNow func() time.Time
}

func RegisterContactHttp(mux *http.ServeMux, publisher contract.Publisher, validate *validator.Validate) *ContactHttp {
	in := &ContactHttp{
		Publisher: publisher,
		Validate:  validate,
		TimeNow:   time.Now,
	}

	mux.HandleFunc("POST /api/event-contact", in.create)

	return in
}

func (in ContactHttp) create(w http.ResponseWriter, r *http.Request) {
	var req model.EventContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: constant.MessageMissingFields})
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "ContactHttp.create")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "event contact receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	err := common.PublishMessage(ctx, in.Publisher, constant.SubjectContactReceived, model.ContactReceivedEventMessage{
		EventId:    req.EventId.String(),
		Name:       req.Name,
		Email:      req.Email,
		Message:    req.Message,
		ReceivedAt: in.TimeNow().Format(time.RFC3339),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish contact received message", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusInternalServerError, Message: constant.MessageInternalError})
		return
	}

	writeJSONResponse(w, http.StatusOK, model.APIResponse{Success: true})
}
