// Package interceptor applies datetime normalization to GraphQL traffic.
//
// Outbound rewrites the variables of operations before they reach the transport (local wall-clock to UTC),
// Inbound rewrites the data of responses before they reach the caller (UTC to local wall-clock).
// Neither direction can fail a request or a response: anything that cannot be normalized is forwarded as is.
package interceptor

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/gqltz/internal/datetime"
	"github.com/mozilla-ai/gqltz/internal/graphql"
	"github.com/mozilla-ai/gqltz/internal/normalize"
)

// Skip reasons reported to the Recorder.
const (
	SkipReasonEmpty           = "empty"
	SkipReasonMalformed       = "malformed-json"
	SkipReasonInvalidEnvelope = "invalid-envelope"
	SkipReasonContentType     = "content-type"
	SkipReasonContentEncoding = "content-encoding"
	SkipReasonEncodeFailed    = "encode-failed"
)

// Recorder receives payload level measurements.
type Recorder interface {
	ObservePayload(direction datetime.Direction, elapsed time.Duration)
	ObserveSkipped(direction datetime.Direction, reason string)
}

// Interceptor binds the normalization engine to GraphQL operations and responses.
// NewInterceptor should be used to create instances of Interceptor.
type Interceptor struct {
	engine    *normalize.Engine
	validator *graphql.Validator
	logger    hclog.Logger
	recorder  Recorder
}

// Option defines a functional option for configuring an Interceptor.
type Option func(*Interceptor) error

// WithLogger configures the logger used to report skipped bodies.
func WithLogger(logger hclog.Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil || reflect.ValueOf(logger).IsNil() {
			return fmt.Errorf("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}

// WithRecorder configures a Recorder for payload timings and skipped bodies.
func WithRecorder(r Recorder) Option {
	return func(i *Interceptor) error {
		if r == nil || reflect.ValueOf(r).IsNil() {
			return fmt.Errorf("recorder cannot be nil")
		}
		i.recorder = r
		return nil
	}
}

// NewInterceptor creates an Interceptor around the supplied engine.
func NewInterceptor(engine *normalize.Engine, opt ...Option) (*Interceptor, error) {
	if engine == nil {
		return nil, fmt.Errorf("normalization engine cannot be nil")
	}

	validator, err := graphql.NewValidator()
	if err != nil {
		return nil, err
	}

	i := &Interceptor{
		engine:    engine,
		validator: validator,
		logger:    hclog.NewNullLogger(),
	}

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(i); err != nil {
			return nil, err
		}
	}

	i.logger = i.logger.Named("interceptor")

	return i, nil
}

// Engine returns the normalization engine used by the interceptor.
func (i *Interceptor) Engine() *normalize.Engine {
	return i.engine
}

// Outbound rewrites the variables of op from wall-clock time in loc to UTC, in place.
func (i *Interceptor) Outbound(op *graphql.Operation, loc *time.Location) {
	if op == nil || op.Variables == nil {
		return
	}
	i.apply(op.Variables, datetime.ToUTCDirection, loc)
}

// Inbound rewrites the data of resp from UTC to wall-clock time in loc, in place.
// Responses without data (e.g. error-only responses) are left as they are.
func (i *Interceptor) Inbound(resp *graphql.Response, loc *time.Location) {
	if resp == nil || resp.Data == nil {
		return
	}
	i.apply(resp.Data, datetime.ToLocalDirection, loc)
}

// OutboundBody rewrites the variables of an encoded operation (or batch of operations).
// It returns the body to send and whether it differs from the input.
// Bodies that are not valid operation envelopes are returned untouched.
func (i *Interceptor) OutboundBody(body []byte, loc *time.Location) ([]byte, bool) {
	return i.rewriteBody(body, graphql.OperationEnvelope, graphql.KeyVariables, datetime.ToUTCDirection, loc)
}

// InboundBody rewrites the data of an encoded response (or batch of responses).
// It returns the body to deliver and whether it differs from the input.
// Bodies that are not valid response envelopes are returned untouched.
func (i *Interceptor) InboundBody(body []byte, loc *time.Location) ([]byte, bool) {
	return i.rewriteBody(body, graphql.ResponseEnvelope, graphql.KeyData, datetime.ToLocalDirection, loc)
}

// OutboundVariables rewrites a JSON encoded variables object, as carried by GET requests.
func (i *Interceptor) OutboundVariables(raw string, loc *time.Location) (string, bool) {
	var vars map[string]any
	if err := graphql.Unmarshal([]byte(raw), &vars); err != nil || vars == nil {
		i.skip(datetime.ToUTCDirection, SkipReasonMalformed, err)
		return raw, false
	}

	if !i.apply(vars, datetime.ToUTCDirection, loc) {
		return raw, false
	}

	out, err := graphql.Patch([]byte(raw), vars)
	if err != nil {
		i.skip(datetime.ToUTCDirection, SkipReasonEncodeFailed, err)
		return raw, false
	}

	return string(out), true
}

func (i *Interceptor) rewriteBody(
	body []byte,
	kind graphql.EnvelopeKind,
	key string,
	direction datetime.Direction,
	loc *time.Location,
) ([]byte, bool) {
	if err := i.validator.Validate(kind, body); err != nil {
		i.skip(direction, skipReason(err), err)
		return body, false
	}

	doc, envs, err := graphql.Envelopes(body)
	if err != nil {
		i.skip(direction, skipReason(err), err)
		return body, false
	}

	changed := false
	for _, env := range envs {
		if node, ok := env[key]; ok && node != nil {
			changed = i.apply(node, direction, loc) || changed
		}
	}

	if !changed {
		return body, false
	}

	out, err := graphql.Patch(body, doc)
	if err != nil {
		i.skip(direction, SkipReasonEncodeFailed, err)
		return body, false
	}

	return out, true
}

// apply walks node and reports whether anything changed.
func (i *Interceptor) apply(node any, direction datetime.Direction, loc *time.Location) bool {
	start := time.Now()

	changed, err := i.engine.Walk(node, direction, loc)
	if err != nil {
		// Only an unknown direction can fail, which is a programming error.
		i.logger.Error("normalization failed", "direction", direction, "error", err)
		return false
	}

	if i.recorder != nil {
		i.recorder.ObservePayload(direction, time.Since(start))
	}

	return changed
}

func (i *Interceptor) skip(direction datetime.Direction, reason string, err error) {
	i.logger.Trace("forwarding body without normalization", "direction", direction, "reason", reason, "error", err)
	if i.recorder != nil {
		i.recorder.ObserveSkipped(direction, reason)
	}
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, graphql.ErrEmptyBody):
		return SkipReasonEmpty
	case errors.Is(err, graphql.ErrMalformedJSON):
		return SkipReasonMalformed
	default:
		return SkipReasonInvalidEnvelope
	}
}
