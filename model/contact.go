package model

type EventContactRequest struct {
	EventId RefId  `json:"eventId" validate:"required,ref_id"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type ContactReceivedEventMessage struct {
	EventId    string `json:"event_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	ReceivedAt string `json:"received_at"`
}
