package client

import (
	"context"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

type evaluateRequest struct {
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// Evaluate asks the server to fetch, extract, and evaluate a listing URL.
func (c *Client) Evaluate(ctx context.Context, url string) (*domain.Evaluation, error) {
	var eval domain.Evaluation
	if err := c.post(ctx, "/api/v1/evaluate", evaluateRequest{URL: url}, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

// EvaluateContent evaluates listing content the caller already has. url is
// recorded on the result and may be empty.
func (c *Client) EvaluateContent(ctx context.Context, content, url string) (*domain.Evaluation, error) {
	var eval domain.Evaluation
	req := evaluateRequest{URL: url, Content: content}
	if err := c.post(ctx, "/api/v1/evaluate", req, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

// EvaluateRecord evaluates a structured vehicle record.
func (c *Client) EvaluateRecord(ctx context.Context, rec domain.VehicleRecord) (*domain.Evaluation, error) {
	var eval domain.Evaluation
	if err := c.post(ctx, "/api/v1/evaluate/record", rec, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

// Valuate estimates the market value of a vehicle record.
func (c *Client) Valuate(ctx context.Context, rec domain.VehicleRecord) (*domain.Valuation, error) {
	var val domain.Valuation
	if err := c.post(ctx, "/api/v1/valuate", rec, &val); err != nil {
		return nil, err
	}
	return &val, nil
}

// RateDeal classifies a listing price against a valuation.
func (c *Client) RateDeal(ctx context.Context, listingPrice, valuationPrice float64) (*domain.DealRating, error) {
	body := map[string]float64{
		"listing_price":   listingPrice,
		"valuation_price": valuationPrice,
	}
	var rating domain.DealRating
	if err := c.post(ctx, "/api/v1/deal-rating", body, &rating); err != nil {
		return nil, err
	}
	return &rating, nil
}

// Flags returns the risk flags the server raises for a record.
func (c *Client) Flags(ctx context.Context, rec domain.VehicleRecord) ([]domain.Flag, error) {
	var resp struct {
		Flags []domain.Flag `json:"flags"`
	}
	if err := c.post(ctx, "/api/v1/flags", rec, &resp); err != nil {
		return nil, err
	}
	return resp.Flags, nil
}

// Extract turns a listing URL into a vehicle record without valuing it.
func (c *Client) Extract(ctx context.Context, url string) (*domain.VehicleRecord, error) {
	var rec domain.VehicleRecord
	if err := c.post(ctx, "/api/v1/extract", evaluateRequest{URL: url}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
