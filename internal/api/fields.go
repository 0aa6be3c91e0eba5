package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/gqltz/internal/contracts"
	"github.com/mozilla-ai/gqltz/internal/fields"
)

// PairedField names the sibling keys of a split datetime.
type PairedField struct {
	Date     string `doc:"Key holding the date part" example:"startDate"     json:"date"`
	Time     string `doc:"Key holding the time part" example:"startTime"     json:"time"`
	Combined string `doc:"Label of the joined value" example:"startDateTime" json:"combined"`
}

// FieldsResponse is the response for GET /fields
type FieldsResponse struct {
	Body struct {
		Direct []string      `doc:"Keys holding a full datetime"       json:"direct"`
		Paired []PairedField `doc:"Key pairs holding a split datetime" json:"paired"`
	}
}

// RegisterFieldRoutes sets up the field classification API endpoint routes.
func RegisterFieldRoutes(routerAPI huma.API, normalizer contracts.Normalizer, apiPathPrefix string) {
	fieldsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Fields"}

	// Add route at the root of the group (no path specified).
	huma.Register(
		fieldsAPI,
		huma.Operation{
			OperationID: "listFields",
			Method:      http.MethodGet,
			Summary:     "List the datetime fields that are normalized",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*FieldsResponse, error) {
			return handleFields(normalizer.Registry())
		},
	)
}

// handleFields is the handler for listing the classified datetime fields.
func handleFields(reg *fields.Registry) (*FieldsResponse, error) {
	pairs := reg.Pairs()
	paired := make([]PairedField, 0, len(pairs))
	for _, p := range pairs {
		paired = append(paired, PairedField(p))
	}

	resp := &FieldsResponse{}
	resp.Body.Direct = reg.Direct()
	resp.Body.Paired = paired

	return resp, nil
}
