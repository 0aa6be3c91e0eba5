// Package client provides a GraphQL-over-HTTP client that works in the caller's wall-clock time.
// It talks to a GraphQL server directly, not through the gateway, which would convert the data a second time.
//
// Datetime variables are converted to UTC before an operation is sent, and datetime fields
// in the response data are converted back to the client's location before they are returned.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/gqltz/internal/graphql"
	"github.com/mozilla-ai/gqltz/internal/interceptor"
)

// DefaultTimeout is the HTTP timeout applied when no client is supplied.
const DefaultTimeout = 30 * time.Second

// Client sends GraphQL operations to a single endpoint.
// NewClient should be used to create instances of Client.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	interceptor *interceptor.Interceptor
	location    *time.Location
	headers     http.Header
	logger      hclog.Logger
}

// Option defines a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets the HTTP client used to send operations.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) error {
		if c == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		cl.httpClient = c
		return nil
	}
}

// WithLocation sets the wall-clock location of the client.
// When not set, time.Local is used.
func WithLocation(loc *time.Location) Option {
	return func(cl *Client) error {
		if loc == nil {
			return fmt.Errorf("location cannot be nil")
		}
		cl.location = loc
		return nil
	}
}

// WithHeader adds a header sent with every operation.
func WithHeader(key string, value string) Option {
	return func(cl *Client) error {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("header name cannot be empty")
		}
		cl.headers.Add(key, value)
		return nil
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger hclog.Logger) Option {
	return func(cl *Client) error {
		if logger == nil || reflect.ValueOf(logger).IsNil() {
			return fmt.Errorf("logger cannot be nil")
		}
		cl.logger = logger
		return nil
	}
}

// NewClient creates a Client for the GraphQL endpoint at rawURL.
func NewClient(rawURL string, i *interceptor.Interceptor, opt ...Option) (*Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint '%s': %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint '%s': scheme must be http or https", rawURL)
	}
	if i == nil {
		return nil, fmt.Errorf("interceptor cannot be nil")
	}

	c := &Client{
		endpoint:    u.String(),
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		interceptor: i,
		location:    time.Local,
		headers:     http.Header{},
		logger:      hclog.NewNullLogger(),
	}

	for _, o := range opt {
		if err := o(c); err != nil {
			return nil, err
		}
	}

	c.logger = c.logger.Named("client")

	return c, nil
}

// Location returns the wall-clock location the client converts from and to.
func (c *Client) Location() *time.Location {
	return c.location
}

// StatusError is returned when the endpoint answers with an HTTP status other than 200 OK
// and the answer cannot be used as a GraphQL response.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status from '%s' (HTTP %d)", e.Endpoint, e.StatusCode)
}

// Do sends op and returns the decoded response.
// The variables of op are normalized in place before sending.
// GraphQL errors in the response are returned as part of the Response, not as an error,
// even when the endpoint reports them with a non-200 status.
func (c *Client) Do(ctx context.Context, op *graphql.Operation) (*graphql.Response, error) {
	resp, _, err := c.send(ctx, op)
	return resp, err
}

// Ping sends query and reports whether the endpoint answered it with 200 OK and a GraphQL response.
// Any other status is returned as a *StatusError, whatever the body says.
func (c *Client) Ping(ctx context.Context, query string) error {
	_, status, err := c.send(ctx, &graphql.Operation{Query: query})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &StatusError{Endpoint: c.endpoint, StatusCode: status}
	}
	return nil
}

// send performs the exchange and returns the decoded response together with the HTTP status.
func (c *Client) send(ctx context.Context, op *graphql.Operation) (*graphql.Response, int, error) {
	if op == nil {
		return nil, 0, fmt.Errorf("operation cannot be nil")
	}

	c.interceptor.Outbound(op, c.location)

	body, err := graphql.Marshal(op)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode operation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/graphql-response+json, application/json")

	c.logger.Debug("sending operation", "endpoint", c.endpoint, "operation", op.OperationName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send operation to '%s': %w", c.endpoint, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	var out graphql.Response
	if err := graphql.Unmarshal(data, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, resp.StatusCode, &StatusError{Endpoint: c.endpoint, StatusCode: resp.StatusCode}
		}
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	c.interceptor.Inbound(&out, c.location)

	return &out, resp.StatusCode, nil
}
