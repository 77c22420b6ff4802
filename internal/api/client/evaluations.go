package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// ListEvaluationsParams holds the history filters. Zero values are omitted.
type ListEvaluationsParams struct {
	Maker   string
	Rating  string
	Since   time.Time
	Limit   int
	Offset  int
	OrderBy string
}

// EvaluationsResponse is one page of evaluation history.
type EvaluationsResponse struct {
	Evaluations []domain.Evaluation `json:"evaluations"`
	Total       int                 `json:"total"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}

// ListEvaluations returns stored evaluations matching p.
func (c *Client) ListEvaluations(ctx context.Context, p *ListEvaluationsParams) (*EvaluationsResponse, error) {
	q := url.Values{}
	if p != nil {
		if p.Maker != "" {
			q.Set("maker", p.Maker)
		}
		if p.Rating != "" {
			q.Set("rating", p.Rating)
		}
		if !p.Since.IsZero() {
			q.Set("since", p.Since.UTC().Format(time.RFC3339))
		}
		if p.Limit > 0 {
			q.Set("limit", strconv.Itoa(p.Limit))
		}
		if p.Offset > 0 {
			q.Set("offset", strconv.Itoa(p.Offset))
		}
		if p.OrderBy != "" {
			q.Set("order_by", p.OrderBy)
		}
	}

	path := "/api/v1/evaluations"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp EvaluationsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetEvaluation returns one stored evaluation.
func (c *Client) GetEvaluation(ctx context.Context, id string) (*domain.Evaluation, error) {
	var eval domain.Evaluation
	if err := c.get(ctx, "/api/v1/evaluations/"+url.PathEscape(id), &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}
