package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"venue-booking/common/errs"
	"venue-booking/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyOutboundCreateCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customers", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"success":true,"userId":"abc123"}`))
	}))
	defer srv.Close()

	out := &ProxyOutbound{BaseURL: srv.URL, Client: srv.Client()}

	resp, err := out.CreateCustomer(context.Background(), model.CreateCustomerRequest{Name: "Jane"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "abc123", resp.UserId)
}

func TestProxyOutboundCreateBookingFailure(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		expectedMsg string
	}{
		{
			name:        "envelope message",
			status:      http.StatusInternalServerError,
			body:        `{"success":false,"message":"Forbidden"}`,
			expectedMsg: "Forbidden",
		},
		{
			name:        "no envelope",
			status:      http.StatusBadGateway,
			body:        `bad gateway`,
			expectedMsg: "Bad Gateway",
		},
		{
			name:        "ok status with invalid body",
			status:      http.StatusOK,
			body:        `<html>`,
			expectedMsg: "Invalid response body",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				raw, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{"data":{"customer":"abc123","venue":"1","status":"pending","bookingDate":"2026-11-02"}}`, string(raw))
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			out := &ProxyOutbound{BaseURL: srv.URL, Client: srv.Client()}

			_, err := out.CreateBooking(context.Background(), model.CreateBookingRequest{Data: model.BookingData{
				Customer:    "abc123",
				Venue:       "1",
				Status:      "pending",
				BookingDate: "2026-11-02",
			}})

			var upErr *errs.UpstreamError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, tc.expectedMsg, upErr.Message)
		})
	}
}

func TestProxyOutboundUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	out := &ProxyOutbound{BaseURL: srv.URL, Client: http.DefaultClient}

	_, err := out.CreateCustomer(context.Background(), model.CreateCustomerRequest{})
	assert.True(t, errors.Is(err, errs.ErrUpstreamUnavailable))
}
