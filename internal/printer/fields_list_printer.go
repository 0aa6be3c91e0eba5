package printer

import (
	"fmt"
	"io"

	"github.com/mozilla-ai/gqltz/internal/cmd/output"
	"github.com/mozilla-ai/gqltz/internal/fields"
)

var _ output.Printer[FieldsListResult] = (*FieldsListPrinter)(nil)

// FieldSource describes where a field classification came from.
type FieldSource string

const (
	// SourceBuiltIn is used when the configuration file has no fields section.
	SourceBuiltIn FieldSource = "built-in"

	// SourceConfig is used when the fields section of the configuration file is in effect.
	SourceConfig FieldSource = "config"
)

// FieldsListResult represents the field classification output structure.
type FieldsListResult struct {
	Source FieldSource   `json:"source" yaml:"source"`
	Direct []string      `json:"direct" yaml:"direct"`
	Paired []fields.Pair `json:"paired" yaml:"paired"`
}

// NewFieldsListResult describes the classification held by reg.
func NewFieldsListResult(reg *fields.Registry, source FieldSource) FieldsListResult {
	return FieldsListResult{
		Source: source,
		Direct: reg.Direct(),
		Paired: reg.Pairs(),
	}
}

// FieldsListPrinter handles text output for field classifications.
type FieldsListPrinter struct{}

// Print writes the direct fields, then the paired fields, of result.
func (p *FieldsListPrinter) Print(w io.Writer, result FieldsListResult) error {
	if _, err := fmt.Fprintf(w, "Datetime fields (%s):\n", result.Source); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "  Direct (%d):\n", len(result.Direct))
	if len(result.Direct) == 0 {
		_, _ = fmt.Fprintln(w, "    (none)")
	}
	for _, name := range result.Direct {
		_, _ = fmt.Fprintf(w, "    %s\n", name)
	}

	_, _ = fmt.Fprintf(w, "  Paired (%d):\n", len(result.Paired))
	if len(result.Paired) == 0 {
		_, _ = fmt.Fprintln(w, "    (none)")
	}
	for _, pair := range result.Paired {
		_, _ = fmt.Fprintf(w, "    %s + %s -> %s\n", pair.Date, pair.Time, pair.Combined)
	}

	return nil
}
