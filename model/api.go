package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type APIResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	UserId    string            `json:"userId,omitempty"`
	BookingId string            `json:"bookingId,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// RefId is an entity reference that browsers send either as a number or a string.
type RefId string

func (r *RefId) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RefId(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ref id must be a string or number: %w", err)
	}
	*r = RefId(n.String())
	return nil
}

func (r RefId) String() string {
	return string(r)
}
