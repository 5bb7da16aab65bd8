package errs

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable wraps transport failures talking to the CMS.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

type HttpError struct {
	Code    int
	Message string
	Data    any
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("code %d: %s, data: %v", e.Code, e.Message, e.Data)
}

// UpstreamError is a non-OK answer from the CMS.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
}
