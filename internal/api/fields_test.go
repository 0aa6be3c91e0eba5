package api

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/gqltz/internal/fields"
)

func TestHandleFields(t *testing.T) {
	t.Parallel()

	resp, err := handleFields(fields.Default())
	require.NoError(t, err)
	require.Equal(t, fields.DefaultDirect(), resp.Body.Direct)
	require.Equal(t, []PairedField{
		{Date: "startDate", Time: "startTime", Combined: "startDateTime"},
		{Date: "endDate", Time: "endTime", Combined: "endDateTime"},
	}, resp.Body.Paired)
}

func TestHandleFields_Empty(t *testing.T) {
	t.Parallel()

	reg, err := fields.New(nil, nil)
	require.NoError(t, err)

	resp, err := handleFields(reg)
	require.NoError(t, err)
	require.Empty(t, resp.Body.Direct)
	require.NotNil(t, resp.Body.Paired)
	require.Empty(t, resp.Body.Paired)
}
