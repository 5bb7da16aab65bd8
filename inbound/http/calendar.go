package http

import (
	"net/http"
	"venue-booking/common/constant"
	"venue-booking/model"
)

// CalendarHttp serves the placeholder calendar until real availability exists.
type CalendarHttp struct{}

func RegisterCalendarHttp(mux *http.ServeMux) *CalendarHttp {
	in := &CalendarHttp{}

	mux.HandleFunc("GET /api/events", in.list)

	return in
}

func (in *CalendarHttp) list(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, model.ListEventsResponse{Events: constant.DemoEvents})
}
