package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLHandler writes results and errors as YAML, honoring struct tags.
type YAMLHandler[T any] struct {
	out    io.Writer
	indent int
}

// NewYAMLHandler returns a YAMLHandler writing to w, indenting nested nodes by indentSpaces.
func NewYAMLHandler[T any](w io.Writer, indentSpaces int) *YAMLHandler[T] {
	return &YAMLHandler[T]{
		out:    w,
		indent: indentSpaces,
	}
}

// HandleResult writes item under a "result" key.
func (h *YAMLHandler[T]) HandleResult(item T) error {
	return h.encode(ResultPayload[T]{Result: item})
}

// HandleError writes the error message under an "error" key.
func (h *YAMLHandler[T]) HandleError(err error) error {
	return h.encode(ErrorPayload{Error: err.Error()})
}

func (h *YAMLHandler[T]) encode(payload any) error {
	enc := yaml.NewEncoder(h.out)
	enc.SetIndent(h.indent)
	if err := enc.Encode(payload); err != nil {
		_ = enc.Close()
		return err
	}

	// Close flushes the encoder's buffered output.
	return enc.Close()
}
