package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindBookingFor(t *testing.T) {
	venue := &Venue{Id: 3, DocumentId: "venue-3", Slug: "grand-hall"}
	bookings := []CmsBooking{
		{Id: 4, BookingDate: "2026-12-24", Venue: venue},
		{Id: 5, DocumentId: "bk-5", BookingDate: "2026-11-02", Venue: nil},
		{Id: 9, BookingDate: "2026-11-02T00:00:00.000Z", Venue: venue},
	}

	tests := []struct {
		name        string
		venueId     string
		bookingDate string
		expectedRef string
		found       bool
	}{
		{name: "by numeric venue id", venueId: "3", bookingDate: "2026-11-02", expectedRef: "9", found: true},
		{name: "by document id", venueId: "venue-3", bookingDate: "2026-11-02", expectedRef: "9", found: true},
		{name: "by slug", venueId: "grand-hall", bookingDate: "2026-12-24", expectedRef: "4", found: true},
		{name: "other venue", venueId: "7", bookingDate: "2026-11-02"},
		{name: "other day", venueId: "3", bookingDate: "2026-11-03"},
		{name: "empty date never matches", venueId: "3", bookingDate: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			booking, ok := FindBookingFor(bookings, tc.venueId, tc.bookingDate)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expectedRef, booking.RefId())
		})
	}
}
