package model

type CreateCustomerRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=30"`
	Notes       string `json:"notes,omitempty" validate:"max=2000"`
}
