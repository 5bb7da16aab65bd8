package form

import (
	"context"
	"encoding/json"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
	"venue-booking/common"
	"venue-booking/common/constant"
	"venue-booking/model"
	"venue-booking/outbound/proxy"
)

type BookingFormTestSuite struct {
	suite.Suite

	server *httptest.Server
	routes map[string]http.HandlerFunc

	mu           sync.Mutex
	calls        []string
	bookingBody  model.CreateBookingRequest
	customerBody model.CreateCustomerRequest

	form *BookingForm
}

func (s *BookingFormTestSuite) SetupSubTest() {
	s.calls = nil
	s.bookingBody = model.CreateBookingRequest{}
	s.customerBody = model.CreateCustomerRequest{}
	s.routes = map[string]http.HandlerFunc{}

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.URL.Path)
		handler, ok := s.routes[r.URL.Path]
		s.mu.Unlock()

		switch r.URL.Path {
		case "/api/customers":
			s.NoError(json.NewDecoder(r.Body).Decode(&s.customerBody))
		case "/api/bookings":
			s.NoError(json.NewDecoder(r.Body).Decode(&s.bookingBody))
		}

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))

	api := &proxy.ProxyOutbound{BaseURL: s.server.URL, Client: &http.Client{Timeout: 2 * time.Second}}
	s.form = New(api, common.NewValidator(), FailureRedirect)
	s.form.Values = validValues()
}

func (s *BookingFormTestSuite) TearDownSubTest() {
	s.server.Close()
}

func TestBookingFormTestSuite(t *testing.T) {
	suite.Run(t, new(BookingFormTestSuite))
}

func validValues() Values {
	return Values{
		Name:        gofakeit.Name(),
		Email:       gofakeit.Email(),
		PhoneNumber: "0812345678901",
		Notes:       gofakeit.Sentence(6),
		Terms:       true,
		VenueId:     "1",
		BookingDate: "2026-11-02",
	}
}

func (s *BookingFormTestSuite) ok(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func (s *BookingFormTestSuite) TestSubmit() {
	tests := []struct {
		name     string
		mutate   func(v *Values)
		mode     FailureMode
		routes   map[string]http.HandlerFunc
		expected Result
		calls    []string
		reset    bool
	}{
		{
			name:     "email without at sign is rejected locally",
			mutate:   func(v *Values) { v.Email = "jane.example.com" },
			expected: Result{FieldErrors: map[string]string{"email": "Please enter a valid email address"}},
		},
		{
			name: "short name and unchecked terms",
			mutate: func(v *Values) {
				v.Name = "J"
				v.Terms = false
			},
			expected: Result{FieldErrors: map[string]string{
				"name":  "Must be at least 2 characters",
				"terms": "You must accept the terms and conditions",
			}},
		},
		{
			name:     "missing date is rejected locally",
			mutate:   func(v *Values) { v.BookingDate = "" },
			expected: Result{Notice: constant.MessageMissingDate},
		},
		{
			name:   "customer failure never calls booking",
			mutate: func(v *Values) {},
			routes: map[string]http.HandlerFunc{
				"/api/customers": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"success":false,"message":"Forbidden"}`))
				},
			},
			expected: Result{RedirectTo: "/contact", Notice: "Forbidden"},
			calls:    []string{"/api/customers"},
		},
		{
			name:   "customer failure inline keeps the form",
			mutate: func(v *Values) {},
			mode:   FailureInline,
			routes: map[string]http.HandlerFunc{
				"/api/customers": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"success":false,"message":"Unable to reach booking service"}`))
				},
			},
			expected: Result{Notice: "Unable to reach booking service"},
			calls:    []string{"/api/customers"},
		},
		{
			name:   "missing user id is a failure",
			mutate: func(v *Values) {},
			routes: map[string]http.HandlerFunc{
				"/api/customers": s.ok(`{"success":true}`),
			},
			expected: Result{RedirectTo: "/contact", Notice: constant.MessageMissingCustomerId},
			calls:    []string{"/api/customers"},
		},
		{
			name:   "booking failure redirects",
			mutate: func(v *Values) {},
			routes: map[string]http.HandlerFunc{
				"/api/customers": s.ok(`{"success":true,"userId":"abc123"}`),
				"/api/bookings": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"success":false,"message":"Venue is not available on that date"}`))
				},
			},
			expected: Result{RedirectTo: "/contact", Notice: "Venue is not available on that date"},
			calls:    []string{"/api/customers", "/api/bookings"},
		},
		{
			name:   "success resets the form",
			mutate: func(v *Values) {},
			routes: map[string]http.HandlerFunc{
				"/api/customers": s.ok(`{"success":true,"userId":"abc123"}`),
				"/api/bookings":  s.ok(`{"success":true,"bookingId":"bk-1"}`),
			},
			expected: Result{Success: true, UserId: "abc123", BookingId: "bk-1"},
			calls:    []string{"/api/customers", "/api/bookings"},
			reset:    true,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			for path, handler := range tc.routes {
				s.routes[path] = handler
			}
			if tc.mode != "" {
				s.form.FailureMode = tc.mode
			}
			tc.mutate(&s.form.Values)
			before := s.form.Values

			got := s.form.Submit(context.Background())

			s.Equal(tc.expected, got)
			s.Equal(tc.calls, s.calls)

			if tc.reset {
				s.Equal(Values{VenueId: "1"}, s.form.Values)
			} else {
				s.Equal(before, s.form.Values)
			}
		})
	}
}

func (s *BookingFormTestSuite) TestBookingCarriesCustomerId() {
	s.Run("user id flows into the booking body", func() {
		s.routes["/api/customers"] = s.ok(`{"success":true,"userId":"abc123"}`)
		s.routes["/api/bookings"] = s.ok(`{"success":true}`)

		values := s.form.Values
		result := s.form.Submit(context.Background())
		s.Require().True(result.Success)

		s.Equal(values.Email, s.customerBody.Email)
		s.Equal(model.BookingData{
			Customer:    "abc123",
			Venue:       "1",
			Notes:       values.Notes,
			Status:      constant.BookingStatusPending,
			BookingDate: "2026-11-02",
		}, s.bookingBody.Data)
	})
}

func (s *BookingFormTestSuite) TestNewDefaultsToRedirect() {
	f := New(nil, common.NewValidator(), "")
	s.Equal(FailureRedirect, f.FailureMode)
	s.Equal(DefaultRedirectTo, f.RedirectTo)
}
