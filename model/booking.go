package model

type BookingData struct {
	Customer    RefId   `json:"customer" validate:"required,ref_id"`
	Venue       RefId   `json:"venue" validate:"required,ref_id"`
	Notes       string  `json:"notes,omitempty" validate:"max=2000"`
	Status      string  `json:"status" validate:"oneof=pending"`
	BookingDate string  `json:"bookingDate" validate:"required,booking_date"`
	PromoCode   string  `json:"promoCode,omitempty" validate:"max=50"`
	Discount    float64 `json:"discount,omitempty" validate:"gte=0,lte=100"`
}

type CreateBookingRequest struct {
	Data BookingData `json:"data"`
}

// BookingRequest is the whole booking form submitted in one call.
type BookingRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber string  `json:"phoneNumber" validate:"required,min=10,max=30"`
	Notes       string  `json:"notes" validate:"max=2000"`
	Terms       bool    `json:"terms" validate:"required"`
	VenueId     RefId   `json:"venueId" validate:"required,ref_id"`
	BookingDate string  `json:"bookingDate" validate:"required,booking_date"`
	PromoCode   string  `json:"promoCode,omitempty" validate:"max=50"`
	Discount    float64 `json:"discount,omitempty" validate:"gte=0,lte=100"`
}

type BookingOutcome struct {
	SubmissionId string `json:"submissionId"`
	UserId       string `json:"userId"`
	BookingId    string `json:"bookingId"`
}

type BookingCreatedEventMessage struct {
	SubmissionId string `json:"submission_id"`
	BookingId    string `json:"booking_id"`
	CustomerId   string `json:"customer_id"`
	VenueId      string `json:"venue_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	BookingDate  string `json:"booking_date"`
	Status       string `json:"status"`
}

// CompensateCustomerEventMessage carries enough of the submission for the
// consumer to look for a booking the CMS created before deleting anything.
type CompensateCustomerEventMessage struct {
	SubmissionId    string `json:"submission_id"`
	CustomerId      string `json:"customer_id"`
	CustomerCreated bool   `json:"customer_created"`
	VenueId         string `json:"venue_id"`
	BookingDate     string `json:"booking_date"`
}
