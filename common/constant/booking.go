package constant

const (
	BookingStatusPending = "pending"
)

// Saga states of a booking submission, stored in booking_submissions.status.
const (
	SubmissionStarted             = "started"
	SubmissionCustomerCreated     = "customer_created"
	SubmissionCompleted           = "completed"
	SubmissionCompensated         = "compensated"
	SubmissionCompensationPending = "compensation_pending"
	SubmissionFailed              = "failed"
)

const (
	MessageMissingFields       = "Missing required fields."
	MessageInternalError       = "Internal error"
	MessageUpstreamUnreachable = "Unable to reach booking service"
	MessageMissingCustomerId   = "Customer id missing from booking service response"
	MessageMissingDate         = "Please select a date for your booking."
)
