package api

// ErrorType represents the classification of errors returned via HTTP headers.
type ErrorType string

// HeaderErrorType is the HTTP header key which should be used to convey API error types.
const HeaderErrorType = "Gqltz-Error-Type"

// UpstreamUnavailable indicates the GraphQL server behind the gateway could not be reached.
const UpstreamUnavailable ErrorType = "upstream-unavailable"
