package fields

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/gqltz/internal/cmd"
	"github.com/mozilla-ai/gqltz/internal/cmd/output"
	"github.com/mozilla-ai/gqltz/internal/config"
	"github.com/mozilla-ai/gqltz/internal/printer"
)

func cmdFormatHandler(c *cobra.Command, format cmd.OutputFormat) (output.Handler[printer.FieldsListResult], error) {
	return cmd.FormatHandler[printer.FieldsListResult](c.OutOrStdout(), format, &printer.FieldsListPrinter{})
}

// printUpsert reports the outcome of a change to the fields section.
func printUpsert(c *cobra.Command, subject string, result config.UpsertResult) {
	if result == config.Noop {
		_, _ = fmt.Fprintf(c.OutOrStdout(), "✓ %s already configured, nothing to change\n", subject)
		return
	}

	_, _ = fmt.Fprintf(c.OutOrStdout(), "✓ %s (operation: %s)\n", subject, string(result))
}
