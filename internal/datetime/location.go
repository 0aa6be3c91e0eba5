package datetime

import (
	"fmt"
	"strings"
	"time"
)

// LoadLocation returns the *time.Location for a user-provided timezone name.
// Supported inputs:
// - IANA names (e.g., "Europe/Paris", "America/New_York").
// - "UTC" and "Local", in any case.
// - An empty name, which stands for the host's local time.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "", strings.EqualFold(name, "local"):
		return time.Local, nil
	case strings.EqualFold(name, "utc"):
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone '%s': %w", name, err)
	}

	return loc, nil
}

// ResolveLocation returns a *time.Location for a user-provided timezone name.
// Empty or unknown names return fallback, or time.Local when fallback is nil.
func ResolveLocation(name string, fallback *time.Location) *time.Location {
	if strings.TrimSpace(name) == "" {
		return orLocal(fallback)
	}

	loc, err := LoadLocation(name)
	if err != nil {
		return orLocal(fallback)
	}

	return loc
}

// IsValidLocation reports whether name resolves to a known location.
// An empty name is valid and stands for the host's local time.
func IsValidLocation(name string) bool {
	_, err := LoadLocation(name)
	return err == nil
}
