package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

// Evaluator is the engine surface used by the evaluation handlers.
type Evaluator interface {
	EvaluateURL(ctx context.Context, url string) (*domain.Evaluation, error)
	EvaluateText(ctx context.Context, content, url string) (*domain.Evaluation, error)
	Evaluate(ctx context.Context, rec domain.VehicleRecord) (*domain.Evaluation, error)
	Valuate(ctx context.Context, rec domain.VehicleRecord) (*domain.Valuation, error)
	Flags(rec domain.VehicleRecord) []domain.Flag
}

// EvaluateHandler handles valuation, deal rating, and evaluation requests.
type EvaluateHandler struct {
	eval Evaluator
}

// NewEvaluateHandler creates a new EvaluateHandler.
func NewEvaluateHandler(e Evaluator) *EvaluateHandler {
	return &EvaluateHandler{eval: e}
}

// --- Input/Output types ---

// RecordBody is a vehicle record as sent by API callers. Numeric fields
// accept JSON numbers or strings such as "$12,500" and "60,000"; values that
// do not parse are treated as absent.
type RecordBody struct {
	Maker      string           `json:"maker,omitempty"      doc:"Vehicle make"                     example:"Honda"`
	Model      string           `json:"model,omitempty"      doc:"Model, optionally with trim"      example:"Civic EX"`
	Year       any              `json:"year,omitempty"       doc:"Model year"`
	Mileage    any              `json:"mileage,omitempty"    doc:"Odometer reading in miles"`
	Price      any              `json:"price,omitempty"      doc:"Listing price in USD"`
	Zip        string           `json:"zip,omitempty"        doc:"5-digit ZIP code"                 example:"85281"`
	RegionName string           `json:"regionName,omitempty" doc:"Provider region code"             example:"REGION_STATE_AZ"`
	BodyType   domain.BodyType  `json:"body_type,omitempty"  doc:"Body style"                       enum:"sedan,suv,pickup,minivan,other"`
	Condition  domain.Condition `json:"condition,omitempty"  doc:"Coarse condition"                 enum:"excellent,good,fair"`
	VIN        string           `json:"vin,omitempty"        doc:"17-character VIN"`
	URL        string           `json:"url,omitempty"        doc:"Listing URL"`
}

// Record converts the body into a domain record.
func (b *RecordBody) Record() domain.VehicleRecord {
	return domain.VehicleRecord{
		Maker:      strings.TrimSpace(b.Maker),
		Model:      strings.TrimSpace(b.Model),
		Year:       valuation.CoerceIntPtr(b.Year),
		Mileage:    valuation.CoerceIntPtr(b.Mileage),
		Price:      valuation.CoerceIntPtr(b.Price),
		Zip:        b.Zip,
		RegionName: b.RegionName,
		BodyType:   b.BodyType,
		Condition:  b.Condition,
		VIN:        strings.ToUpper(strings.TrimSpace(b.VIN)),
		URL:        b.URL,
	}
}

// RecordInput is the request for the record-based endpoints.
type RecordInput struct {
	Body RecordBody
}

// EvaluateURLInput is the request body for evaluating a listing.
type EvaluateURLInput struct {
	Body struct {
		URL     string `json:"url,omitempty"     format:"uri" doc:"Listing page URL"     example:"https://cars.example.com/vehicle/42"`
		Content string `json:"content,omitempty"              doc:"Already-fetched page content; skips the download when set"`
	}
}

// EvaluationOutput is the response for the evaluate endpoints.
type EvaluationOutput struct {
	Body *domain.Evaluation
}

// ValuationOutput is the response for the valuate endpoint.
type ValuationOutput struct {
	Body *domain.Valuation
}

// DealRatingInput is the request body for rating a price directly.
type DealRatingInput struct {
	Body struct {
		ListingPrice   *float64 `json:"listing_price,omitempty"   doc:"Asking price in USD"             example:"10000"`
		ValuationPrice *float64 `json:"valuation_price,omitempty" doc:"Estimated market value in USD"   example:"11748"`
	}
}

// DealRatingOutput is the response for the deal-rating endpoint.
type DealRatingOutput struct {
	Body domain.DealRating
}

// FlagsOutput is the response for the flags endpoint.
type FlagsOutput struct {
	Body struct {
		Flags []domain.Flag `json:"flags" doc:"Risk flags raised for the record"`
	}
}

// --- Handlers ---

// EvaluateURL extracts a listing and evaluates it.
func (h *EvaluateHandler) EvaluateURL(
	ctx context.Context,
	input *EvaluateURLInput,
) (*EvaluationOutput, error) {
	var (
		eval *domain.Evaluation
		err  error
	)
	switch {
	case strings.TrimSpace(input.Body.Content) != "":
		eval, err = h.eval.EvaluateText(ctx, input.Body.Content, input.Body.URL)
	case input.Body.URL != "":
		eval, err = h.eval.EvaluateURL(ctx, input.Body.URL)
	default:
		return nil, huma.Error422UnprocessableEntity("url or content is required")
	}
	if err != nil {
		return nil, apiError("evaluation failed", err)
	}
	return &EvaluationOutput{Body: eval}, nil
}

// EvaluateRecord evaluates an already-structured vehicle record.
func (h *EvaluateHandler) EvaluateRecord(
	ctx context.Context,
	input *RecordInput,
) (*EvaluationOutput, error) {
	eval, err := h.eval.Evaluate(ctx, input.Body.Record())
	if err != nil {
		return nil, apiError("evaluation failed", err)
	}
	return &EvaluationOutput{Body: eval}, nil
}

// Valuate estimates the market value of a vehicle record.
func (h *EvaluateHandler) Valuate(ctx context.Context, input *RecordInput) (*ValuationOutput, error) {
	val, err := h.eval.Valuate(ctx, input.Body.Record())
	if err != nil {
		return nil, apiError("valuation failed", err)
	}
	return &ValuationOutput{Body: val}, nil
}

// RateDeal classifies a listing price against a valuation. Missing prices
// rate as N/A.
func (*EvaluateHandler) RateDeal(_ context.Context, input *DealRatingInput) (*DealRatingOutput, error) {
	resp := &DealRatingOutput{}
	if input.Body.ListingPrice == nil || input.Body.ValuationPrice == nil {
		resp.Body = domain.DealRating{Rating: domain.RatingNA, Comment: valuation.NoValuationComment}
		return resp, nil
	}
	resp.Body = valuation.Classify(*input.Body.ListingPrice, *input.Body.ValuationPrice)
	return resp, nil
}

// Flags returns the risk flags for a vehicle record.
func (h *EvaluateHandler) Flags(_ context.Context, input *RecordInput) (*FlagsOutput, error) {
	resp := &FlagsOutput{}
	resp.Body.Flags = h.eval.Flags(input.Body.Record())
	if resp.Body.Flags == nil {
		resp.Body.Flags = []domain.Flag{}
	}
	return resp, nil
}

// RegisterEvaluateRoutes registers the evaluation endpoints with the Huma API.
func RegisterEvaluateRoutes(api huma.API, h *EvaluateHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "evaluate-listing",
		Method:      http.MethodPost,
		Path:        "/api/v1/evaluate",
		Summary:     "Evaluate a listing by URL",
		Description: "Extracts the vehicle from a listing page with the configured LLM backend " +
			"and evaluates it. Supplying content skips the page download.",
		Tags: []string{"evaluate"},
		Errors: []int{
			http.StatusUnprocessableEntity,
			http.StatusNotFound,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusInternalServerError,
		},
	}, h.EvaluateURL)

	huma.Register(api, huma.Operation{
		OperationID: "evaluate-record",
		Method:      http.MethodPost,
		Path:        "/api/v1/evaluate/record",
		Summary:     "Evaluate a structured vehicle record",
		Description: "Values a vehicle record and rates its listing price against that value.",
		Tags:        []string{"evaluate"},
		Errors: []int{
			http.StatusUnprocessableEntity,
			http.StatusNotFound,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
		},
	}, h.EvaluateRecord)

	huma.Register(api, huma.Operation{
		OperationID: "valuate",
		Method:      http.MethodPost,
		Path:        "/api/v1/valuate",
		Summary:     "Estimate market value",
		Description: "Returns the fair value, price range, and adjustment detail for a vehicle. " +
			"maker, year, and mileage are required.",
		Tags: []string{"evaluate"},
		Errors: []int{
			http.StatusUnprocessableEntity,
			http.StatusNotFound,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
		},
	}, h.Valuate)

	huma.Register(api, huma.Operation{
		OperationID: "rate-deal",
		Method:      http.MethodPost,
		Path:        "/api/v1/deal-rating",
		Summary:     "Rate a listing price",
		Description: "Classifies a listing price against a valuation as Excellent Deal, " +
			"Good Deal, Fair Price, Overpriced, or N/A.",
		Tags: []string{"evaluate"},
	}, h.RateDeal)

	huma.Register(api, huma.Operation{
		OperationID: "analyze-flags",
		Method:      http.MethodPost,
		Path:        "/api/v1/flags",
		Summary:     "Analyze risk flags",
		Description: "Returns the risk flags raised for a vehicle record.",
		Tags:        []string{"evaluate"},
	}, h.Flags)
}
