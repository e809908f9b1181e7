package client

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
// Transport failures are not wrapped and keep whatever type the Doer returned.
var (
	ErrHTTPStatus      = errors.New("http error")
	ErrEncode          = errors.New("encode request failed")
	ErrDecode          = errors.New("decode response failed")
	ErrSave            = errors.New("save download failed")
	ErrInvalidFilename = errors.New("invalid filename")
)

// StatusError reports a non-2xx response. Only the status code is kept; the
// response body is never inspected.
type StatusError struct {
	StatusCode int
	Method     string
	Endpoint   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error: %s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
}

// Is makes errors.Is(err, ErrHTTPStatus) hold for every StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}
