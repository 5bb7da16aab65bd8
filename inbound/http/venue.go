package http

import (
	"log/slog"
	"net/http"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/common/errs"
	"venue-booking/common/otel"
	"venue-booking/common/vars"
	"venue-booking/model"
	"venue-booking/outbound/cms"
)

const dataSourceHeader = "X-Data-Source"

type VenueHttp struct {
	Cms *cms.CmsOutbound
}

func RegisterVenueHttp(mux *http.ServeMux, cmsOutbound *cms.CmsOutbound) *VenueHttp {
	in := &VenueHttp{Cms: cmsOutbound}

	mux.HandleFunc("GET /api/venues", in.list)
	mux.HandleFunc("GET /api/venues/{id}", in.detail)

	return in
}

func (in *VenueHttp) list(w http.ResponseWriter, r *http.Request) {
	venues, pagination, mock := vars.GetVenues()
	if venues == nil {
		venues, pagination, mock = constant.MockVenues, mockPagination(), true
	}

	w.Header().Set(dataSourceHeader, dataSource(mock))
	writeJSONResponse(w, http.StatusOK, model.VenueListResponse{
		Data: venues,
		Meta: model.Meta{Pagination: pagination},
	})
}

func (in *VenueHttp) detail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, span := otel.Tracer.Start(r.Context(), "VenueHttp.detail")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	venue, err := in.Cms.GetVenue(ctx, id)
	if err == nil {
		w.Header().Set(dataSourceHeader, dataSource(false))
		writeJSONResponse(w, http.StatusOK, model.VenueResponse{Data: venue})
		return
	}

	slog.WarnContext(ctx, "failed to fetch venue from cms, trying fallback", traceIdAttr, slog.String("id", id), slog.Any(constant.LogFieldErr, err))

	snapshot, _, mock := vars.GetVenues()
	if found, ok := model.FindVenue(snapshot, id); ok {
		w.Header().Set(dataSourceHeader, dataSource(mock))
		writeJSONResponse(w, http.StatusOK, model.VenueResponse{Data: found})
		return
	}

	if found, ok := model.FindVenue(constant.MockVenues, id); ok {
		w.Header().Set(dataSourceHeader, dataSource(true))
		writeJSONResponse(w, http.StatusOK, model.VenueResponse{Data: found})
		return
	}

	writeErrorResponse(w, &errs.HttpError{Code: http.StatusNotFound, Message: "Venue not found"})
}

func mockPagination() model.Pagination {
	return model.Pagination{
		Page:      1,
		PageSize:  len(constant.MockVenues),
		PageCount: 1,
		Total:     len(constant.MockVenues),
	}
}

func dataSource(mock bool) string {
	if mock {
		return "mock"
	}
	return "cms"
}
