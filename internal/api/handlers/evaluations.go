package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/vehicle-deal-checker/internal/store"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// EvaluationsHandler serves evaluation history.
type EvaluationsHandler struct {
	store store.Store
}

// NewEvaluationsHandler creates a new EvaluationsHandler. A nil store means
// history is disabled and the endpoints answer 503.
func NewEvaluationsHandler(s store.Store) *EvaluationsHandler {
	return &EvaluationsHandler{store: s}
}

// --- Input/Output types ---

// ListEvaluationsInput holds the history filters.
type ListEvaluationsInput struct {
	Maker   string    `query:"maker"    doc:"Filter by make, case-insensitive"          example:"honda"`
	Rating  string    `query:"rating"   doc:"Filter by deal rating"                     enum:"Excellent Deal,Good Deal,Fair Price,Overpriced,N/A"`
	Since   time.Time `query:"since"    doc:"Only evaluations created at or after this time"`
	Limit   int       `query:"limit"    doc:"Maximum results"                           default:"50"         minimum:"1" maximum:"500"`
	Offset  int       `query:"offset"   doc:"Results to skip"                           default:"0"          minimum:"0"`
	OrderBy string    `query:"order_by" doc:"Sort order"                                default:"created_at" enum:"created_at,valuation_price,listing_price"`
}

// ListEvaluationsOutput is the response for listing evaluations.
type ListEvaluationsOutput struct {
	Body struct {
		Evaluations []domain.Evaluation `json:"evaluations"`
		Total       int                 `json:"total"  example:"12"`
		Limit       int                 `json:"limit"  example:"50"`
		Offset      int                 `json:"offset" example:"0"`
	}
}

// GetEvaluationInput is the input for fetching one evaluation.
type GetEvaluationInput struct {
	ID string `path:"id" doc:"Evaluation ID" example:"3f1c0c4e-8f0a-4a53-9d8c-2f7b8e1f6a10"`
}

// GetEvaluationOutput is the response for fetching one evaluation.
type GetEvaluationOutput struct {
	Body *domain.Evaluation
}

// --- Handlers ---

// ListEvaluations returns stored evaluations matching the filters.
func (h *EvaluationsHandler) ListEvaluations(
	ctx context.Context,
	input *ListEvaluationsInput,
) (*ListEvaluationsOutput, error) {
	if h.store == nil {
		return nil, huma.Error503ServiceUnavailable("evaluation history is disabled")
	}

	q := &store.EvaluationQuery{
		Limit:   input.Limit,
		Offset:  input.Offset,
		OrderBy: input.OrderBy,
	}
	if input.Maker != "" {
		q.Maker = &input.Maker
	}
	if input.Rating != "" {
		q.Rating = &input.Rating
	}
	if !input.Since.IsZero() {
		q.Since = &input.Since
	}

	evals, total, err := h.store.ListEvaluations(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list evaluations: " + err.Error())
	}

	resp := &ListEvaluationsOutput{}
	resp.Body.Evaluations = evals
	if resp.Body.Evaluations == nil {
		resp.Body.Evaluations = []domain.Evaluation{}
	}
	resp.Body.Total = total
	resp.Body.Limit = input.Limit
	resp.Body.Offset = input.Offset
	return resp, nil
}

// GetEvaluation returns one stored evaluation.
func (h *EvaluationsHandler) GetEvaluation(
	ctx context.Context,
	input *GetEvaluationInput,
) (*GetEvaluationOutput, error) {
	if h.store == nil {
		return nil, huma.Error503ServiceUnavailable("evaluation history is disabled")
	}

	e, err := h.store.GetEvaluation(ctx, input.ID)
	if err != nil {
		return nil, apiError("failed to get evaluation", err)
	}
	return &GetEvaluationOutput{Body: e}, nil
}

// RegisterEvaluationRoutes registers the history endpoints with the Huma API.
func RegisterEvaluationRoutes(api huma.API, h *EvaluationsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-evaluations",
		Method:      http.MethodGet,
		Path:        "/api/v1/evaluations",
		Summary:     "List past evaluations",
		Description: "Returns stored evaluations, newest first by default, with filters and pagination.",
		Tags:        []string{"history"},
		Errors:      []int{http.StatusServiceUnavailable, http.StatusInternalServerError},
	}, h.ListEvaluations)

	huma.Register(api, huma.Operation{
		OperationID: "get-evaluation",
		Method:      http.MethodGet,
		Path:        "/api/v1/evaluations/{id}",
		Summary:     "Get an evaluation",
		Description: "Returns one stored evaluation by ID.",
		Tags:        []string{"history"},
		Errors:      []int{http.StatusNotFound, http.StatusServiceUnavailable},
	}, h.GetEvaluation)
}
