package interceptor

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mozilla-ai/gqltz/internal/datetime"
)

// HeaderRequestID carries the identifier used to correlate gateway logs with upstream logs.
const HeaderRequestID = "X-Request-Id"

// queryParamVariables is the URL parameter holding variables on GET operations.
const queryParamVariables = "variables"

// Middleware returns an HTTP middleware function that normalizes GraphQL traffic flowing through it.
// Operation variables are rewritten before the request reaches next, and the response data written by next
// is rewritten before it reaches the client.
func (i *Interceptor) Middleware(resolve LocationResolver) func(http.Handler) http.Handler {
	if resolve == nil {
		resolve = FixedLocation(nil)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := ensureRequestID(r.Header)
			loc := resolve(r)
			logger := i.logger.With("request_id", requestID, "location", loc.String())

			// Rewrite the outgoing operation.
			if err := i.rewriteRequest(r, loc); err != nil {
				http.Error(w, "Failed to process request", http.StatusInternalServerError)
				logger.Error("failed to read request body", "error", err)
				return
			}

			// Continue to actual handler (capture response).
			recorder := newResponseRecorder(w)
			next.ServeHTTP(recorder, r)

			body := recorder.body.Bytes()
			if reason, ok := rewritable(recorder.Header()); ok {
				body, _ = i.InboundBody(body, loc)
			} else {
				i.skip(datetime.ToLocalDirection, reason, nil)
			}

			w.Header().Set(HeaderRequestID, requestID)
			writeResponse(w, recorder.statusCode, body)
		})
	}
}

// rewriteRequest normalizes the operation carried by r, in place.
func (i *Interceptor) rewriteRequest(r *http.Request, loc *time.Location) error {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		if raw := q.Get(queryParamVariables); raw != "" {
			if out, changed := i.OutboundVariables(raw, loc); changed {
				q.Set(queryParamVariables, out)
				r.URL.RawQuery = q.Encode()
			}
		}
		return nil
	}

	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	_ = r.Body.Close()

	if !isJSONMediaType(r.Header.Get("Content-Type")) {
		i.skip(datetime.ToUTCDirection, SkipReasonContentType, nil)
		setRequestBody(r, body)
		return nil
	}

	body, _ = i.OutboundBody(body, loc)
	setRequestBody(r, body)

	return nil
}

// setRequestBody replaces the body of r and keeps the length headers consistent.
func setRequestBody(r *http.Request, body []byte) {
	r.Body = io.NopCloser(bytes.NewReader(body))
	r.ContentLength = int64(len(body))
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	if r.Header.Get("Content-Length") != "" {
		r.Header.Set("Content-Length", strconv.Itoa(len(body)))
	}
}

// rewritable reports whether a response with the given headers carries a JSON body that can be rewritten.
// When it can't, the skip reason is returned.
func rewritable(h http.Header) (string, bool) {
	if !isJSONMediaType(h.Get("Content-Type")) {
		return SkipReasonContentType, false
	}
	if enc := strings.TrimSpace(h.Get("Content-Encoding")); enc != "" && !strings.EqualFold(enc, "identity") {
		return SkipReasonContentEncoding, false
	}
	return "", true
}

// isJSONMediaType accepts application/json, application/graphql-response+json and any other +json type.
func isJSONMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// ensureRequestID returns the request ID in h, generating and storing one when absent.
func ensureRequestID(h http.Header) string {
	id := strings.TrimSpace(h.Get(HeaderRequestID))
	if id == "" {
		id = uuid.NewString()
		h.Set(HeaderRequestID, id)
	}
	return id
}

// writeResponse writes the (potentially modified) response body.
func writeResponse(w http.ResponseWriter, statusCode int, body []byte) {
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(statusCode)

	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// responseRecorder captures the response from the next handler.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

// newResponseRecorder creates a new responseRecorder.
func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // Default status.
	}
}

// WriteHeader captures the status code.
func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
}

// Write captures the response body.
func (r *responseRecorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

// Flush is a no-op, the body is only written once the whole response has been captured.
func (r *responseRecorder) Flush() {}
