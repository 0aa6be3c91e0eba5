package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/gqltz/internal/contracts"
	"github.com/mozilla-ai/gqltz/internal/datetime"
	"github.com/mozilla-ai/gqltz/internal/errors"
)

// NormalizeRequest represents the incoming API request to normalize an arbitrary JSON payload.
type NormalizeRequest struct {
	Body struct {
		Direction string `doc:"Conversion direction, outbound or inbound"  example:"outbound"         json:"direction"`
		Timezone  string `doc:"IANA timezone, defaults to the gateway one" example:"America/New_York" json:"timezone,omitempty"`
		Payload   any    `doc:"JSON value to normalize"                                                json:"payload"`
	}
}

// NormalizeResponse is the response for POST /normalize
type NormalizeResponse struct {
	Body struct {
		Direction string `doc:"Conversion direction that was applied" json:"direction"`
		Timezone  string `doc:"Timezone the payload was converted in" json:"timezone"`
		Payload   any    `doc:"Normalized JSON value"                 json:"payload"`
	}
}

// RegisterNormalizeRoutes sets up the payload normalization API endpoint routes.
// Requests that do not name a timezone are converted relative to fallback.
func RegisterNormalizeRoutes(
	routerAPI huma.API,
	normalizer contracts.Normalizer,
	fallback *time.Location,
	apiPathPrefix string,
) {
	normalizeAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Normalize"}

	// Add route at the root of the group (no path specified).
	huma.Register(
		normalizeAPI,
		huma.Operation{
			OperationID: "normalizePayload",
			Method:      http.MethodPost,
			Summary:     "Normalize the datetime fields of a JSON payload",
			Tags:        tags,
		},
		func(ctx context.Context, input *NormalizeRequest) (*NormalizeResponse, error) {
			return handleNormalize(normalizer, fallback, input)
		},
	)
}

// handleNormalize is the handler for normalizing a payload outside of any GraphQL exchange.
func handleNormalize(
	normalizer contracts.Normalizer,
	fallback *time.Location,
	input *NormalizeRequest,
) (*NormalizeResponse, error) {
	direction, err := datetime.ParseDirection(input.Body.Direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrUnknownDirection, err)
	}

	tz := strings.TrimSpace(input.Body.Timezone)
	if !datetime.IsValidLocation(tz) {
		return nil, fmt.Errorf("%w: '%s'", errors.ErrUnknownTimezone, tz)
	}
	loc := datetime.ResolveLocation(tz, fallback)

	out, err := normalizer.Transform(input.Body.Payload, direction, loc)
	if err != nil {
		return nil, err
	}

	resp := &NormalizeResponse{}
	resp.Body.Direction = string(direction)
	resp.Body.Timezone = loc.String()
	resp.Body.Payload = out

	return resp, nil
}
