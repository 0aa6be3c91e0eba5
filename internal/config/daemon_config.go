package config

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mozilla-ai/gqltz/internal/datetime"
)

// DaemonConfig represents the gateway settings that can be stored in .gqltz.toml.
//
// NOTE: if you add/remove fields you must review the associated Get, Set and Validate implementations.
type DaemonConfig struct {
	// Address to bind the gateway (e.g., "0.0.0.0:8090")
	// Maps to CLI flag --addr
	Addr *string `json:"addr,omitempty" toml:"addr,omitempty" yaml:"addr,omitempty"`

	// URL of the GraphQL server operations are forwarded to
	// Maps to CLI flag --upstream
	Upstream *string `json:"upstream,omitempty" toml:"upstream,omitempty" yaml:"upstream,omitempty"`

	// Path the gateway serves GraphQL operations on
	GraphQLPath *string `json:"graphqlPath,omitempty" toml:"graphql_path,omitempty" yaml:"graphql_path,omitempty"`

	// IANA timezone used when a request does not state one, empty means host local time
	// Maps to CLI flag --timezone
	Timezone *string `json:"timezone,omitempty" toml:"timezone,omitempty" yaml:"timezone,omitempty"`

	// Request header clients use to state their IANA timezone
	TimezoneHeader *string `json:"timezoneHeader,omitempty" toml:"timezone_header,omitempty" yaml:"timezone_header,omitempty"`

	// Timeout for graceful gateway shutdown
	ShutdownTimeout *Duration `json:"shutdownTimeout,omitempty" toml:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`

	// Timeout for a single upstream round trip
	UpstreamTimeout *Duration `json:"upstreamTimeout,omitempty" toml:"upstream_timeout,omitempty" yaml:"upstream_timeout,omitempty"`

	// Nested CORS configuration for cross-origin requests
	CORS *CORSConfigSection `json:"cors,omitempty" toml:"cors,omitempty" yaml:"cors,omitempty"`
}

// CORSConfigSection contains Cross-Origin Resource Sharing (CORS) configuration.
//
// NOTE: if you add/remove fields you must review the associated Get, Set and Validate implementations.
type CORSConfigSection struct {
	// Enable CORS support
	Enable *bool `json:"enable,omitempty" toml:"enable,omitempty" yaml:"enable,omitempty"`

	// Allowed origins for CORS requests
	Origins []string `json:"allowOrigins,omitempty" toml:"allow_origins,omitempty" yaml:"allow_origins,omitempty"`

	// Allowed HTTP methods for CORS requests
	Methods []string `json:"allowMethods,omitempty" toml:"allow_methods,omitempty" yaml:"allow_methods,omitempty"`

	// Allowed headers for CORS requests
	Headers []string `json:"allowHeaders,omitempty" toml:"allow_headers,omitempty" yaml:"allow_headers,omitempty"`

	// Headers exposed to the client
	ExposeHeaders []string `json:"exposeHeaders,omitempty" toml:"expose_headers,omitempty" yaml:"expose_headers,omitempty"`

	// Allow credentials in CORS requests
	Credentials *bool `json:"allowCredentials,omitempty" toml:"allow_credentials,omitempty" yaml:"allow_credentials,omitempty"`

	// Maximum age for CORS preflight cache
	MaxAge *Duration `json:"maxAge,omitempty" toml:"max_age,omitempty" yaml:"max_age,omitempty"`
}

// Duration is a custom time.Duration type that provides improved marshaling.
type Duration time.Duration

// SchemaKey describes a settable configuration key.
type SchemaKey struct {
	Path        string `json:"path"        yaml:"path"`
	Type        string `json:"type"        yaml:"type"`
	Description string `json:"description" yaml:"description"`
}

// AvailableKeys returns every key accepted by Get and Set.
func (d *DaemonConfig) AvailableKeys() []SchemaKey {
	keys := []SchemaKey{
		{Path: "addr", Type: "string", Description: "Gateway address (host:port)"},
		{Path: "upstream", Type: "string", Description: "GraphQL server URL operations are forwarded to"},
		{Path: "graphql_path", Type: "string", Description: "Path the gateway serves GraphQL on"},
		{Path: "timezone", Type: "string", Description: "Fallback IANA timezone (empty for host local time)"},
		{Path: "timezone_header", Type: "string", Description: "Request header carrying the client timezone"},
		{Path: "shutdown_timeout", Type: "duration", Description: "Graceful shutdown timeout"},
		{Path: "upstream_timeout", Type: "duration", Description: "Upstream round trip timeout"},
	}

	for _, key := range (&CORSConfigSection{}).AvailableKeys() {
		keys = append(keys, SchemaKey{
			Path:        "cors." + key.Path,
			Type:        key.Type,
			Description: key.Description,
		})
	}

	return keys
}

// Get returns the value stored under the dotted key path.
// When called with an empty path, returns the entire daemon configuration.
func (d *DaemonConfig) Get(path string) (any, error) {
	if strings.TrimSpace(path) == "" {
		return d, nil
	}

	section, rest, nested := strings.Cut(normalizeKey(path), ".")
	if nested {
		if section != "cors" {
			return nil, NewErrInvalidKey("daemon", path)
		}
		if d.CORS == nil {
			return nil, fmt.Errorf("daemon.cors not set")
		}
		return d.CORS.Get(rest)
	}

	var value any
	switch section {
	case "addr":
		value = d.Addr
	case "upstream":
		value = d.Upstream
	case "graphql_path":
		value = d.GraphQLPath
	case "timezone":
		value = d.Timezone
	case "timezone_header":
		value = d.TimezoneHeader
	case "shutdown_timeout":
		value = d.ShutdownTimeout
	case "upstream_timeout":
		value = d.UpstreamTimeout
	case "cors":
		if d.CORS == nil {
			return nil, fmt.Errorf("daemon.cors not set")
		}
		return d.CORS, nil
	default:
		return nil, NewErrInvalidKey("daemon", path)
	}

	return derefOrUnset("daemon."+section, value)
}

// Set stores value under the dotted key path, an empty value clears the key.
func (d *DaemonConfig) Set(path string, value string) (UpsertResult, error) {
	if strings.TrimSpace(path) == "" {
		return Noop, fmt.Errorf("daemon config path cannot be empty")
	}

	section, rest, nested := strings.Cut(normalizeKey(path), ".")
	if nested {
		if section != "cors" {
			return Noop, NewErrInvalidKey("daemon", path)
		}
		if d.CORS == nil {
			d.CORS = &CORSConfigSection{}
		}
		return d.CORS.Set(rest, value)
	}

	switch section {
	case "addr":
		return setString(&d.Addr, value), nil
	case "upstream":
		return setString(&d.Upstream, value), nil
	case "graphql_path":
		return setString(&d.GraphQLPath, value), nil
	case "timezone":
		return setString(&d.Timezone, value), nil
	case "timezone_header":
		return setString(&d.TimezoneHeader, value), nil
	case "shutdown_timeout":
		return setDuration(&d.ShutdownTimeout, section, value)
	case "upstream_timeout":
		return setDuration(&d.UpstreamTimeout, section, value)
	default:
		return Noop, NewErrInvalidKey("daemon", path)
	}
}

// Validate validates daemon configuration values.
func (d *DaemonConfig) Validate() error {
	if d == nil {
		return fmt.Errorf("no daemon configuration found")
	}

	var validationErrors []error

	if d.Addr != nil {
		if *d.Addr == "" {
			validationErrors = append(validationErrors, fmt.Errorf("gateway address cannot be empty"))
		} else if !isValidAddr(*d.Addr) {
			validationErrors = append(
				validationErrors,
				fmt.Errorf("gateway address \"%s\" appears to be invalid (expected format: host:port)", *d.Addr),
			)
		}
	}

	if d.Upstream != nil && !isValidUpstream(*d.Upstream) {
		validationErrors = append(
			validationErrors,
			fmt.Errorf("upstream \"%s\" must be an absolute http or https URL", *d.Upstream),
		)
	}

	if d.GraphQLPath != nil && !strings.HasPrefix(*d.GraphQLPath, "/") {
		validationErrors = append(validationErrors, fmt.Errorf("graphql path \"%s\" must start with '/'", *d.GraphQLPath))
	}

	if d.Timezone != nil && *d.Timezone != "" && !datetime.IsValidLocation(*d.Timezone) {
		validationErrors = append(validationErrors, fmt.Errorf("unknown timezone \"%s\"", *d.Timezone))
	}

	if d.TimezoneHeader != nil && strings.TrimSpace(*d.TimezoneHeader) == "" {
		validationErrors = append(validationErrors, fmt.Errorf("timezone header cannot be empty"))
	}

	for name, timeout := range map[string]*Duration{"shutdown": d.ShutdownTimeout, "upstream": d.UpstreamTimeout} {
		if timeout != nil && *timeout <= 0 {
			validationErrors = append(validationErrors, fmt.Errorf("%s timeout must be positive", name))
		}
	}

	if d.CORS != nil {
		if err := d.CORS.Validate(); err != nil {
			validationErrors = append(validationErrors, fmt.Errorf("CORS configuration error: %w", err))
		}
	}

	return errors.Join(validationErrors...)
}

// AvailableKeys returns every CORS key accepted by Get and Set.
func (c *CORSConfigSection) AvailableKeys() []SchemaKey {
	return []SchemaKey{
		{Path: "enable", Type: "bool", Description: "Enable CORS support"},
		{Path: "allow_origins", Type: "[]string", Description: "Allowed origins (comma separated)"},
		{Path: "allow_methods", Type: "[]string", Description: "Allowed HTTP methods (comma separated)"},
		{Path: "allow_headers", Type: "[]string", Description: "Allowed request headers (comma separated)"},
		{Path: "expose_headers", Type: "[]string", Description: "Headers exposed to the client (comma separated)"},
		{Path: "allow_credentials", Type: "bool", Description: "Allow credentials in CORS requests"},
		{Path: "max_age", Type: "duration", Description: "Maximum age for the preflight cache"},
	}
}

func (c *CORSConfigSection) EnableOrDefault(defaultEnable bool) bool {
	if c == nil || c.Enable == nil {
		return defaultEnable
	}
	return *c.Enable
}

// Get returns the CORS value stored under key.
func (c *CORSConfigSection) Get(key string) (any, error) {
	key = normalizeKey(key)

	var value any
	switch key {
	case "":
		return c, nil
	case "enable":
		value = c.Enable
	case "allow_origins":
		value = c.Origins
	case "allow_methods":
		value = c.Methods
	case "allow_headers":
		value = c.Headers
	case "expose_headers":
		value = c.ExposeHeaders
	case "allow_credentials":
		value = c.Credentials
	case "max_age":
		value = c.MaxAge
	default:
		return nil, NewErrInvalidKey("CORS", key)
	}

	return derefOrUnset("daemon.cors."+key, value)
}

// Set stores value under key, an empty value clears the key.
func (c *CORSConfigSection) Set(key string, value string) (UpsertResult, error) {
	key = normalizeKey(key)

	switch key {
	case "enable":
		return setBool(&c.Enable, key, value)
	case "allow_origins":
		return setStringSlice(&c.Origins, value), nil
	case "allow_methods":
		return setStringSlice(&c.Methods, value), nil
	case "allow_headers":
		return setStringSlice(&c.Headers, value), nil
	case "expose_headers":
		return setStringSlice(&c.ExposeHeaders, value), nil
	case "allow_credentials":
		return setBool(&c.Credentials, key, value)
	case "max_age":
		return setDuration(&c.MaxAge, key, value)
	default:
		return Noop, NewErrInvalidKey("CORS", key)
	}
}

// Validate validates CORS configuration values.
func (c *CORSConfigSection) Validate() error {
	var validationErrors []error

	for _, origin := range c.Origins {
		// Wildcard origin check.
		// See: https://developer.mozilla.org/en-US/docs/Web/HTTP/Reference/Headers/Access-Control-Allow-Origin#sect
		if origin == "*" {
			continue
		}

		if origin == "" {
			validationErrors = append(validationErrors, fmt.Errorf("CORS origin cannot be empty"))
			continue
		}

		if !isValidOrigin(origin) {
			validationErrors = append(validationErrors, fmt.Errorf("invalid origin address: %s", origin))
		}
	}

	validMethods := ValidHTTPRequestMethods()
	for _, method := range c.Methods {
		if method == "*" {
			continue
		}

		if method == "" {
			validationErrors = append(validationErrors, fmt.Errorf("CORS method cannot be empty"))
			continue
		}

		if _, ok := validMethods[method]; !ok {
			validationErrors = append(
				validationErrors,
				fmt.Errorf("CORS method %s is not a valid HTTP request method", method),
			)
		}
	}

	if c.MaxAge != nil && *c.MaxAge <= 0 {
		validationErrors = append(validationErrors, fmt.Errorf("CORS max age must be positive"))
	}

	return errors.Join(validationErrors...)
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// String returns a human-readable string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

func ValidHTTPRequestMethods() map[string]struct{} {
	return map[string]struct{}{
		http.MethodGet:     {},
		http.MethodHead:    {},
		http.MethodPost:    {},
		http.MethodPut:     {},
		http.MethodDelete:  {},
		http.MethodConnect: {},
		http.MethodOptions: {},
		http.MethodTrace:   {},
		http.MethodPatch:   {},
	}
}

// isValidAddr performs basic validation for host:port format using stdlib.
func isValidAddr(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}

	// Special case: ":" (empty host, empty port) is valid for bind-all-interfaces
	if host == "" && port == "" {
		return true
	}

	if port == "" {
		return false
	}

	if strings.ContainsAny(host, " \t\n\r") || len(host) > 253 {
		return false
	}

	return true
}

// isValidOrigin accepts scheme://host[:port] origins, and bare host:port values.
func isValidOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err == nil && u.Scheme != "" && u.Host != "" {
		return u.Path == "" || u.Path == "/"
	}
	return isValidAddr(origin)
}

func isValidUpstream(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// normalizeKey normalizes a key by trimming whitespace and converting to lowercase.
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// parseStringArray parses a comma-separated string into a slice of trimmed strings.
func parseStringArray(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, len(parts))
	for i, part := range parts {
		result[i] = strings.TrimSpace(part)
	}
	return result
}

func derefOrUnset(name string, value any) (any, error) {
	switch v := value.(type) {
	case *string:
		if v != nil {
			return *v, nil
		}
	case *bool:
		if v != nil {
			return *v, nil
		}
	case *Duration:
		if v != nil {
			return v.String(), nil
		}
	case []string:
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%s not set", name)
}

func setString(field **string, value string) UpsertResult {
	old := *field
	if value == "" {
		*field = nil
	} else {
		*field = &value
	}
	return determinePtrResult(old, *field)
}

func setBool(field **bool, key string, value string) (UpsertResult, error) {
	old := *field
	if value == "" {
		*field = nil
		return determinePtrResult(old, *field), nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return Noop, NewErrInvalidValue(key, value)
	}
	*field = &b

	return determinePtrResult(old, *field), nil
}

func setDuration(field **Duration, key string, value string) (UpsertResult, error) {
	old := *field
	if value == "" {
		*field = nil
		return determinePtrResult(old, *field), nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return Noop, NewErrInvalidValue(key, value)
	}
	duration := Duration(d)
	*field = &duration

	return determinePtrResult(old, *field), nil
}

func setStringSlice(field *[]string, value string) UpsertResult {
	old := *field
	*field = parseStringArray(value)

	switch {
	case len(old) == 0 && len(*field) == 0:
		return Noop
	case len(old) == 0:
		return Created
	case len(*field) == 0:
		return Deleted
	case slices.Equal(old, *field):
		return Noop
	default:
		return Updated
	}
}

// determinePtrResult determines the UpsertResult for optional value changes.
func determinePtrResult[T comparable](old *T, new *T) UpsertResult {
	switch {
	case old == nil && new == nil:
		return Noop
	case old == nil:
		return Created
	case new == nil:
		return Deleted
	case *old != *new:
		return Updated
	default:
		return Noop
	}
}
