package main

import (
	"fmt"
	"os"
	_ "time/tzdata" // IANA zones for hosts without a system zoneinfo database.

	"github.com/mozilla-ai/gqltz/cmd"
)

func main() {
	// Execute the root command.
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
