package interceptor

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/mozilla-ai/gqltz/internal/datetime"
)

// roundTripper normalizes GraphQL traffic on the client side of an HTTP transport.
type roundTripper struct {
	next        http.RoundTripper
	interceptor *Interceptor
	resolve     LocationResolver
}

// RoundTripper wraps next so outgoing operation variables and incoming response data are normalized.
// A nil next uses http.DefaultTransport, a nil resolve uses the host's local time.
func (i *Interceptor) RoundTripper(next http.RoundTripper, resolve LocationResolver) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if resolve == nil {
		resolve = FixedLocation(nil)
	}
	return &roundTripper{
		next:        next,
		interceptor: i,
		resolve:     resolve,
	}
}

// RoundTrip implements http.RoundTripper.
// The caller's request is never modified, a clone carries the rewritten body.
func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	loc := rt.resolve(req)

	out := req.Clone(req.Context())
	if err := rt.interceptor.rewriteRequest(out, loc); err != nil {
		return nil, err
	}

	resp, err := rt.next.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	reason, ok := rewritable(resp.Header)
	if !ok {
		rt.interceptor.skip(datetime.ToLocalDirection, reason, nil)
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	body, _ = rt.interceptor.InboundBody(body, loc)

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))

	return resp, nil
}
