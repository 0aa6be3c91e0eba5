package output

import (
	"io"
	"strings"

	"github.com/bytedance/sonic"
)

// JSONHandler writes results and errors as JSON, honoring struct tags.
// Map keys are sorted and HTML is escaped, as encoding/json does.
type JSONHandler[T any] struct {
	out    io.Writer
	indent string
}

// NewJSONHandler returns a JSONHandler writing to w.
// An indentSpaces of zero writes compact JSON.
func NewJSONHandler[T any](w io.Writer, indentSpaces int) *JSONHandler[T] {
	return &JSONHandler[T]{
		out:    w,
		indent: strings.Repeat(" ", indentSpaces),
	}
}

// HandleResult writes item under a "result" key.
func (h *JSONHandler[T]) HandleResult(item T) error {
	return h.encode(ResultPayload[T]{Result: item})
}

// HandleError writes the error message under an "error" key.
func (h *JSONHandler[T]) HandleError(err error) error {
	return h.encode(ErrorPayload{Error: err.Error()})
}

func (h *JSONHandler[T]) encode(payload any) error {
	enc := sonic.ConfigStd.NewEncoder(h.out)
	if h.indent != "" {
		enc.SetIndent("", h.indent)
	}
	return enc.Encode(payload)
}
