package http

import (
	"encoding/json"
	"errors"
	"github.com/go-playground/validator/v10"
	"net/http"
	"venue-booking/common/constant"
	"venue-booking/common/errs"
	"venue-booking/model"
)

const maxBodyBytes = 1 << 20

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeErrorResponse(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := model.APIResponse{Success: false}

	var httpErr *errs.HttpError
	var validationErr validator.ValidationErrors
	var upstreamErr *errs.UpstreamError

	switch {
	case errors.As(err, &httpErr):
		resp.Message = httpErr.Message
		if data, ok := httpErr.Data.(map[string]string); ok {
			resp.Errors = data
		}
		w.WriteHeader(httpErr.Code)
	case errors.As(err, &validationErr):
		resp.Message = "Validation failed"
		resp.Errors = make(map[string]string, len(validationErr))

		onlyRequired := true
		for _, fieldErr := range validationErr {
			tag := fieldErr.Tag()
			if tag == "ref_id" {
				tag = "required"
			}
			resp.Errors[fieldErr.Field()] = tag
			if tag != "required" {
				onlyRequired = false
			}
		}
		if onlyRequired {
			resp.Message = constant.MessageMissingFields
		}

		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, errs.ErrUpstreamUnavailable):
		resp.Message = constant.MessageUpstreamUnreachable
		w.WriteHeader(http.StatusInternalServerError)
	case errors.As(err, &upstreamErr):
		resp.Message = upstreamErr.Message
		w.WriteHeader(http.StatusInternalServerError)
	default:
		resp.Message = "Internal Server Error"
		w.WriteHeader(http.StatusInternalServerError)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid request"}
	}
	return nil
}
