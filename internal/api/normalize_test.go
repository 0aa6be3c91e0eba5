package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/gqltz/internal/errors"
	"github.com/mozilla-ai/gqltz/internal/fields"
	"github.com/mozilla-ai/gqltz/internal/normalize"
)

func newTestEngine(t *testing.T) *normalize.Engine {
	t.Helper()

	engine, err := normalize.NewEngine(fields.Default())
	require.NoError(t, err)

	return engine
}

func normalizeRequest(direction string, timezone string, payload any) *NormalizeRequest {
	req := &NormalizeRequest{}
	req.Body.Direction = direction
	req.Body.Timezone = timezone
	req.Body.Payload = payload
	return req
}

func TestHandleNormalize(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	utcMinus5 := time.FixedZone("UTC-5", -5*60*60)

	tests := []struct {
		name             string
		input            *NormalizeRequest
		fallback         *time.Location
		expectedTimezone string
		expectedPayload  any
	}{
		{
			name: "outbound with named timezone",
			input: normalizeRequest("outbound", "Asia/Kolkata", map[string]any{
				"createdAt": "2025-03-10T14:30:00.000",
				"title":     "standup",
			}),
			expectedTimezone: "Asia/Kolkata",
			expectedPayload: map[string]any{
				"createdAt": "2025-03-10T09:00:00.000Z",
				"title":     "standup",
			},
		},
		{
			name: "inbound falls back to gateway timezone",
			input: normalizeRequest("inbound", "", []any{
				map[string]any{"updatedAt": "2025-03-10T02:00:00.000Z"},
			}),
			fallback:         utcMinus5,
			expectedTimezone: "UTC-5",
			expectedPayload: []any{
				map[string]any{"updatedAt": "2025-03-09T21:00:00.000"},
			},
		},
		{
			name: "paired fields",
			input: normalizeRequest("utc", "", map[string]any{
				"startDate": "2025-03-10",
				"startTime": "14:30:00.000",
			}),
			fallback:         utcMinus5,
			expectedTimezone: "UTC-5",
			expectedPayload: map[string]any{
				"startDate": "2025-03-10",
				"startTime": "19:30:00.000Z",
			},
		},
		{
			name:             "scalar payload",
			input:            normalizeRequest("local", "UTC", "2025-03-10T02:00:00.000Z"),
			expectedTimezone: "UTC",
			expectedPayload:  "2025-03-10T02:00:00.000Z",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp, err := handleNormalize(engine, tc.fallback, tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expectedTimezone, resp.Body.Timezone)
			require.Equal(t, tc.expectedPayload, resp.Body.Payload)
		})
	}
}

func TestHandleNormalize_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	payload := map[string]any{"createdAt": "2025-03-10T14:30:00.000"}
	resp, err := handleNormalize(newTestEngine(t), time.UTC, normalizeRequest("outbound", "", payload))
	require.NoError(t, err)

	require.Equal(t, map[string]any{"createdAt": "2025-03-10T14:30:00.000Z"}, resp.Body.Payload)
	require.Equal(t, map[string]any{"createdAt": "2025-03-10T14:30:00.000"}, payload)
}

func TestHandleNormalize_Errors(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)

	_, err := handleNormalize(engine, time.UTC, normalizeRequest("sideways", "", nil))
	require.ErrorIs(t, err, errors.ErrUnknownDirection)
	require.ErrorContains(t, err, "unknown direction 'sideways'")

	_, err = handleNormalize(engine, time.UTC, normalizeRequest("inbound", "Mars/Olympus_Mons", nil))
	require.ErrorIs(t, err, errors.ErrUnknownTimezone)
	require.ErrorContains(t, err, "'Mars/Olympus_Mons'")
}
