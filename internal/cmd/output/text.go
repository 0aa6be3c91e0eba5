package output

import (
	"io"
)

// TextHandler renders results with a Printer.
// Errors are returned unchanged so the command reports them.
type TextHandler[T any] struct {
	out     io.Writer
	printer Printer[T]
}

// NewTextHandler returns a TextHandler printing to w with p.
func NewTextHandler[T any](w io.Writer, p Printer[T]) *TextHandler[T] {
	return &TextHandler[T]{
		out:     w,
		printer: p,
	}
}

// HandleResult prints item.
func (h *TextHandler[T]) HandleResult(item T) error {
	return h.printer.Print(h.out, item)
}

// HandleError returns err.
func (h *TextHandler[T]) HandleError(err error) error {
	return err
}
