package ports

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResult indicates the endpoint answered successfully with nothing usable.
var ErrEmptyResult = errors.New("empty result")

// ErrTimeout indicates a call exceeded its wall-clock budget.
var ErrTimeout = errors.New("call timed out")

// EndpointError is a non-success HTTP status from an upstream endpoint.
type EndpointError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *EndpointError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s status %d: %s", e.Endpoint, e.Status, e.Body)
}

// Attempt outcomes reported by ClassifyAttempt.
const (
	OutcomeOK            = "ok"
	OutcomeEndpointError = "endpoint_error"
	OutcomeEmpty         = "empty"
	OutcomeTimeout       = "timeout"
	OutcomeCanceled      = "canceled"
	OutcomeError         = "error"
)

// ClassifyAttempt maps an attempt error to a coarse outcome label.
func ClassifyAttempt(err error) string {
	var endpointErr *EndpointError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrEmptyResult):
		return OutcomeEmpty
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.As(err, &endpointErr):
		return OutcomeEndpointError
	default:
		return OutcomeError
	}
}
