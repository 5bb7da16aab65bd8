package model

import "strconv"

// CmsData wraps every CMS request and response body.
type CmsData[T any] struct {
	Data T `json:"data"`
}

type CmsEntity struct {
	Id         int64  `json:"id"`
	DocumentId string `json:"documentId"`
}

type CmsErrorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

type CmsBooking struct {
	Id          int64  `json:"id"`
	DocumentId  string `json:"documentId"`
	BookingDate string `json:"bookingDate"`
	Status      string `json:"status"`
	Venue       *Venue `json:"venue"`
}

func (b CmsBooking) RefId() string {
	if b.DocumentId != "" {
		return b.DocumentId
	}
	if b.Id != 0 {
		return strconv.FormatInt(b.Id, 10)
	}
	return ""
}

// FindBookingFor picks the booking made for venueId on bookingDate. Dates compare by
// calendar day so a stored timestamp still matches the submitted date.
func FindBookingFor(bookings []CmsBooking, venueId, bookingDate string) (CmsBooking, bool) {
	for _, b := range bookings {
		if b.Venue == nil || !sameDay(b.BookingDate, bookingDate) {
			continue
		}
		if _, ok := FindVenue([]Venue{*b.Venue}, venueId); ok {
			return b, true
		}
	}
	return CmsBooking{}, false
}

func sameDay(a, b string) bool {
	if a == b {
		return a != ""
	}
	return len(a) >= 10 && len(b) >= 10 && a[:10] == b[:10]
}
