package interceptor

import (
	"net/http"
	"strings"
	"time"

	"github.com/mozilla-ai/gqltz/internal/datetime"
)

// DefaultTimezoneHeader is the request header a client can use to state its IANA timezone.
const DefaultTimezoneHeader = "X-Timezone"

// LocationResolver picks the wall-clock location for a request.
type LocationResolver func(r *http.Request) *time.Location

// FixedLocation returns a LocationResolver that always returns loc.
// A nil loc resolves to time.Local.
func FixedLocation(loc *time.Location) LocationResolver {
	if loc == nil {
		loc = time.Local
	}
	return func(_ *http.Request) *time.Location {
		return loc
	}
}

// LocationLoader looks up a location by IANA timezone name.
type LocationLoader func(name string) (*time.Location, error)

// HeaderLocation returns a LocationResolver that reads an IANA timezone name from header,
// falling back to fallback when the header is absent or names an unknown zone.
// The name "Local" is treated as absent: it would otherwise select the gateway host's zone.
// Names are looked up with load, or datetime.LoadLocation when load is nil.
func HeaderLocation(header string, fallback *time.Location, load LocationLoader) LocationResolver {
	if header == "" {
		header = DefaultTimezoneHeader
	}
	if fallback == nil {
		fallback = time.Local
	}
	if load == nil {
		load = datetime.LoadLocation
	}
	return func(r *http.Request) *time.Location {
		if r == nil {
			return fallback
		}
		name := strings.TrimSpace(r.Header.Get(header))
		if name == "" || strings.EqualFold(name, "local") {
			return fallback
		}
		loc, err := load(name)
		if err != nil {
			return fallback
		}
		return loc
	}
}
