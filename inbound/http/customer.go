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

type CustomerHttp struct {
	Cms      *cms.CmsOutbound
	Validate *validator.Validate
}

func RegisterCustomerHttp(mux *http.ServeMux, cmsOutbound *cms.CmsOutbound, validate *validator.Validate) *CustomerHttp {
	in := &CustomerHttp{Cms: cmsOutbound, Validate: validate}

	mux.HandleFunc("POST /api/customers", in.create)

	return in
}

func (in CustomerHttp) create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "CustomerHttp.create")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "create customer receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	userId, created, err := in.Cms.CreateOrIdentifyCustomer(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create customer", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		common.UtilSpanError(span, err)
		writeErrorResponse(w, err)
		return
	}

	slog.InfoContext(ctx, "create customer success", traceIdAttr, slog.Any(constant.LogFieldResponse, userId), slog.Bool("created", created))

	writeJSONResponse(w, http.StatusOK, model.APIResponse{Success: true, UserId: userId})
}
