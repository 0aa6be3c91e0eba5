// Package graphql models the GraphQL-over-HTTP envelopes that carry the payloads being normalized.
// It has no knowledge of GraphQL schemas or documents.
package graphql

const (
	// KeyVariables is the envelope key holding an operation's variables.
	KeyVariables = "variables"

	// KeyData is the envelope key holding a response's data.
	KeyData = "data"
)

// Operation is a single GraphQL request as sent by the dashboard.
type Operation struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// Response is a single GraphQL response.
// Data is nil for error-only responses.
type Response struct {
	Data       any            `json:"data,omitempty"`
	Errors     []Error        `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error is a GraphQL error entry.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Locations  []Location     `json:"locations,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Location points at a position in the GraphQL document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}
