package client

import (
	"context"
	"net/url"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// BaselineResponse is the server's answer to a baseline lookup.
type BaselineResponse struct {
	Brand       string                     `json:"brand"`
	Region      string                     `json:"region,omitempty"`
	BasePrice   int                        `json:"base_price"`
	PickedModel *string                    `json:"picked_model,omitempty"`
	Candidates  []domain.BaselineCandidate `json:"candidates"`
}

// GetBaseline resolves the baseline price for a brand. region and model are
// optional.
func (c *Client) GetBaseline(ctx context.Context, brand, region, model string) (*BaselineResponse, error) {
	q := url.Values{}
	if region != "" {
		q.Set("region", region)
	}
	if model != "" {
		q.Set("model", model)
	}

	path := "/api/v1/baselines/" + url.PathEscape(brand)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp BaselineResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QuotaResponse is the provider quota snapshot.
type QuotaResponse struct {
	DailyLimit int64  `json:"daily_limit"`
	DailyUsed  int64  `json:"daily_used"`
	Remaining  int64  `json:"remaining"`
	Exhausted  bool   `json:"exhausted"`
	ResetAt    string `json:"reset_at,omitempty"`
}

// GetQuota returns the salePrice quota status.
func (c *Client) GetQuota(ctx context.Context) (*QuotaResponse, error) {
	var resp QuotaResponse
	if err := c.get(ctx, "/api/v1/quota", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
