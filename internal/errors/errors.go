// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
// 3. Consider if existing handler tests need updates
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// This typically results from validation failures or incorrect request parameters.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrUnknownDirection indicates that a normalization direction other than outbound or inbound was requested.
	// Recommended to map to HTTP 400 Bad Request.
	ErrUnknownDirection = errors.New("unknown normalization direction")

	// ErrUnknownTimezone indicates that the requested timezone is not a known IANA zone name.
	// Recommended to map to HTTP 400 Bad Request.
	ErrUnknownTimezone = errors.New("unknown timezone")

	// ErrUpstreamUnavailable indicates that the GraphQL server behind the gateway could not be reached,
	// or did not answer in time.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
