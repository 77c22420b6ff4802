package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// BaselineResolver resolves a brand baseline price.
type BaselineResolver interface {
	Baseline(
		ctx context.Context,
		brand, region, model string,
	) (domain.BaselineResult, []domain.BaselineCandidate, error)
}

// BaselinesHandler handles baseline lookups.
type BaselinesHandler struct {
	resolver BaselineResolver
}

// NewBaselinesHandler creates a new BaselinesHandler.
func NewBaselinesHandler(r BaselineResolver) *BaselinesHandler {
	return &BaselinesHandler{resolver: r}
}

// --- Input/Output types ---

// GetBaselineInput is the input for a baseline lookup.
type GetBaselineInput struct {
	Brand  string `path:"brand"   doc:"Vehicle make"                                  example:"Honda"`
	Region string `query:"region" doc:"Provider region code; server default when empty" example:"REGION_STATE_CA"`
	Model  string `query:"model"  doc:"Model hint used to pick a candidate row"          example:"Civic"`
}

// GetBaselineOutput is the response for a baseline lookup.
type GetBaselineOutput struct {
	Body struct {
		Brand      string                     `json:"brand"                  example:"Honda"`
		Region     string                     `json:"region,omitempty"       example:"REGION_STATE_CA"`
		BasePrice  int                        `json:"base_price"             example:"25000"   doc:"Baseline new-vehicle price in USD"`
		Picked     *string                    `json:"picked_model,omitempty" example:"Civic"   doc:"Candidate row the model hint matched"`
		Candidates []domain.BaselineCandidate `json:"candidates"             doc:"Every row the provider returned"`
	}
}

// --- Handlers ---

// GetBaseline resolves the baseline price for a brand.
func (h *BaselinesHandler) GetBaseline(
	ctx context.Context,
	input *GetBaselineInput,
) (*GetBaselineOutput, error) {
	res, candidates, err := h.resolver.Baseline(ctx, input.Brand, input.Region, input.Model)
	if err != nil {
		return nil, apiError("baseline lookup failed", err)
	}

	resp := &GetBaselineOutput{}
	resp.Body.Brand = input.Brand
	resp.Body.Region = input.Region
	resp.Body.BasePrice = res.BasePrice
	resp.Body.Picked = res.PickedModelName
	resp.Body.Candidates = candidates
	if resp.Body.Candidates == nil {
		resp.Body.Candidates = []domain.BaselineCandidate{}
	}
	return resp, nil
}

// RegisterBaselineRoutes registers the baseline endpoint with the Huma API.
func RegisterBaselineRoutes(api huma.API, h *BaselinesHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-baseline",
		Method:      http.MethodGet,
		Path:        "/api/v1/baselines/{brand}",
		Summary:     "Get a brand baseline price",
		Description: "Fetches salePrice rows for a brand and region and returns the matched " +
			"model's price, or the median across models when no model matches.",
		Tags: []string{"valuation"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
		},
	}, h.GetBaseline)
}
