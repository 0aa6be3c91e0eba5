package output

import "io"

var (
	_ Handler[any] = (*JSONHandler[any])(nil)
	_ Handler[any] = (*YAMLHandler[any])(nil)
	_ Handler[any] = (*TextHandler[any])(nil)
)

// Handler renders a command result, or the error that prevented one, in a single output format.
type Handler[T any] interface {
	// HandleResult renders item.
	HandleResult(item T) error

	// HandleError renders err.
	// Structured formats write the error as a payload and return nil, text output returns err unchanged.
	HandleError(err error) error
}

// Printer writes human-readable text for a result.
type Printer[T any] interface {
	Print(w io.Writer, item T) error
}

// ResultPayload wraps a result value under the "result" key.
type ResultPayload[T any] struct {
	Result T `json:"result" yaml:"result"`
}

// ErrorPayload wraps an error message under the "error" key.
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
}
