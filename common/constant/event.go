package constant

const (
	QueueStreamName = "venue_booking_queue_stream"
)

const (
	AllWildcard     = "events.>"
	BookingWildcard = "events.booking.>"
	ContactWildcard = "events.contact.>"
	EmailWildcard   = "events.email.>"

	SubjectBookingCreated            = "events.booking.created"
	SubjectBookingCompensateCustomer = "events.booking.compensate_customer"
	SubjectContactReceived           = "events.contact.received"
	SubjectSendEmail                 = "events.email.send"
)
