package adapter

import "errors"

// Sentinel errors mapped from HTTP statuses by mapHTTPError.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnprocessable       = errors.New("unprocessable entity")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrGatewayTimeout      = errors.New("gateway timeout")
)

var (
	// ErrNetwork wraps failures that happened before a response was read
	// (DNS, connection refused, TLS, timeouts).
	ErrNetwork = errors.New("network error")

	// ErrInvalidServerURL is returned for an empty or unparsable server URL.
	ErrInvalidServerURL = errors.New("invalid server url")

	// ErrDecodingResponse is returned when a 2xx body cannot be decoded.
	ErrDecodingResponse = errors.New("failed to decode server response")
)
