package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/vehicle-deal-checker/pkg/extract"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// ExtractHandler handles LLM extraction requests.
type ExtractHandler struct {
	extractor extract.Extractor
}

// NewExtractHandler creates a new ExtractHandler. A nil extractor makes the
// endpoint answer 503.
func NewExtractHandler(extractor extract.Extractor) *ExtractHandler {
	return &ExtractHandler{extractor: extractor}
}

// ExtractInput is the request body for the extract endpoint.
type ExtractInput struct {
	Body struct {
		URL     string `json:"url,omitempty"     format:"uri" doc:"Listing page URL"  example:"https://cars.example.com/vehicle/42"`
		Content string `json:"content,omitempty"              doc:"Listing page content; the URL is not fetched when set"`
	}
}

// ExtractOutput is the response body for the extract endpoint.
type ExtractOutput struct {
	Body domain.VehicleRecord
}

// Extract turns a listing page into a structured vehicle record.
func (h *ExtractHandler) Extract(ctx context.Context, input *ExtractInput) (*ExtractOutput, error) {
	if h.extractor == nil {
		return nil, huma.Error503ServiceUnavailable("listing extractor is not configured")
	}

	var (
		rec domain.VehicleRecord
		err error
	)
	switch {
	case strings.TrimSpace(input.Body.Content) != "":
		rec, err = h.extractor.ExtractText(ctx, input.Body.Content, input.Body.URL)
	case input.Body.URL != "":
		rec, err = h.extractor.ExtractURL(ctx, input.Body.URL)
	default:
		return nil, huma.Error422UnprocessableEntity("url or content is required")
	}
	if err != nil {
		return nil, apiError("extraction failed", err)
	}

	return &ExtractOutput{Body: rec}, nil
}

// RegisterExtractRoutes registers extract endpoints with the Huma API.
func RegisterExtractRoutes(api huma.API, h *ExtractHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "extract-listing",
		Method:      http.MethodPost,
		Path:        "/api/v1/extract",
		Summary:     "Extract a vehicle record from a listing",
		Description: "Uses the configured LLM backend to turn a listing page into a structured " +
			"vehicle record. Fields the listing does not state are left absent.",
		Tags:   []string{"extract"},
		Errors: []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable, http.StatusInternalServerError},
	}, h.Extract)
}
