package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrCredentialMissing means the user has not stored a remote platform token yet.
	ErrCredentialMissing = errors.New("coreiot access token not configured")
	// ErrUnavailable marks a network failure talking to the remote platform.
	ErrUnavailable = errors.New("remote platform unavailable")
	// ErrDataFormat marks an upstream payload missing expected fields.
	ErrDataFormat = errors.New("invalid data format from remote platform")
)

// UpstreamError is a non-success response from the remote telemetry platform.
// The status and body are passed through to the caller unchanged.
type UpstreamError struct {
	StatusCode int
	Body       string
	Endpoint   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error %d from %s: %s", e.StatusCode, e.Endpoint, e.Body)
}
