package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

func intPtr(v int) *int { return &v }

func jsonServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.GetQuota(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantNotFnd bool
	}{
		{
			name:       "problem detail",
			status:     http.StatusBadGateway,
			body:       `{"title":"Bad Gateway","status":502,"detail":"valuation failed: provider error"}`,
			wantDetail: "valuation failed: provider error",
		},
		{
			name:   "validation errors are appended",
			status: http.StatusUnprocessableEntity,
			body: `{"title":"Unprocessable Entity","status":422,"detail":"validation failed",` +
				`"errors":[{"message":"expected string to be RFC 3986 uri","location":"body.url"}]}`,
			wantDetail: "validation failed; body.url: expected string to be RFC 3986 uri",
		},
		{
			name:       "plain error body",
			status:     http.StatusInternalServerError,
			body:       `{"error":"internal server error"}`,
			wantDetail: "internal server error",
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       "404 page not found",
			wantDetail: "404 page not found",
			wantNotFnd: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := jsonServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GetEvaluation(context.Background(), "abc")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.wantNotFnd, IsNotFound(err))
		})
	}
}

func TestClient_Evaluate(t *testing.T) {
	t.Parallel()

	c := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/evaluate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"url": "https://cars.example.com/1"}, body)

		_ = json.NewEncoder(w).Encode(domain.Evaluation{
			ID:         "e1",
			Valuation:  domain.Valuation{ValuationPrice: 11748},
			DealRating: domain.DealRating{Rating: domain.RatingExcellent},
		})
	})

	eval, err := c.Evaluate(context.Background(), "https://cars.example.com/1")
	require.NoError(t, err)
	assert.Equal(t, "e1", eval.ID)
	assert.Equal(t, 11748, eval.Valuation.ValuationPrice)
	assert.Equal(t, domain.RatingExcellent, eval.DealRating.Rating)
}

func TestClient_EvaluateContent(t *testing.T) {
	t.Parallel()

	c := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2018 Honda Civic", body["content"])
		_, hasURL := body["url"]
		assert.False(t, hasURL)
		_, _ = w.Write([]byte(`{"vehicle":{"maker":"Honda"},"valuation":{"valuation_price":1,"source":"Mock"}}`))
	})

	eval, err := c.EvaluateContent(context.Background(), "2018 Honda Civic", "")
	require.NoError(t, err)
	assert.Equal(t, "Honda", eval.Vehicle.Maker)
}

func TestClient_Valuate(t *testing.T) {
	t.Parallel()

	c := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/valuate", r.URL.Path)

		var rec domain.VehicleRecord
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "Honda", rec.Maker)
		assert.Equal(t, intPtr(60000), rec.Mileage)

		_ = json.NewEncoder(w).Encode(domain.Valuation{
			ValuationPrice: 11748,
			Range:          &domain.PriceRange{Low: 10808, High: 12688},
		})
	})

	val, err := c.Valuate(context.Background(), domain.VehicleRecord{
		Maker:   "Honda",
		Year:    intPtr(2018),
		Mileage: intPtr(60000),
	})
	require.NoError(t, err)
	assert.Equal(t, 11748, val.ValuationPrice)
	require.NotNil(t, val.Range)
	assert.Equal(t, 10808, val.Range.Low)
}

func TestClient_RateDeal(t *testing.T) {
	t.Parallel()

	c := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/deal-rating", r.URL.Path)

		var body map[string]float64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.InDelta(t, 9000.0, body["listing_price"], 0)
		assert.InDelta(t, 10000.0, body["valuation_price"], 0)

		_, _ = w.Write([]byte(`{"rating":"Good Deal","comment":"below"}`))
	})

	rating, err := c.RateDeal(context.Background(), 9000, 10000)
	require.NoError(t, err)
	assert.Equal(t, domain.RatingGood, rating.Rating)
}

func TestClient_Flags(t *testing.T) {
	t.Parallel()

	c := jsonServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"flags":[{"code":"VIN_MISSING","level":"red","label":"Red flag","message":"m"}]}`))
	})

	flags, err := c.Flags(context.Background(), domain.VehicleRecord{Maker: "Kia"})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "VIN_MISSING", flags[0].Code)
}

func TestClient_GetBaseline(t *testing.T) {
	t.Parallel()

	c := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/baselines/Land Rover", r.URL.Path)
		assert.Equal(t, "REGION_STATE_CA", r.URL.Query().Get("region"))
		assert.Equal(t, "defender", r.URL.Query().Get("model"))
		_, _ = w.Write([]byte(`{"brand":"Land Rover","base_price":61000,"picked_model":"Defender","candidates":[]}`))
	})

	resp, err := c.GetBaseline(context.Background(), "Land Rover", "REGION_STATE_CA", "defender")
	require.NoError(t, err)
	assert.Equal(t, 61000, resp.BasePrice)
	require.NotNil(t, resp.PickedModel)
	assert.Equal(t, "Defender", *resp.PickedModel)
}

func TestClient_ListEvaluations(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	c := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/evaluations", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "honda", q.Get("maker"))
		assert.Equal(t, "Excellent Deal", q.Get("rating"))
		assert.Equal(t, "2026-05-01T00:00:00Z", q.Get("since"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Empty(t, q.Get("offset"))
		assert.Equal(t, "listing_price", q.Get("order_by"))

		_ = json.NewEncoder(w).Encode(EvaluationsResponse{
			Evaluations: []domain.Evaluation{{ID: "e1"}},
			Total:       1,
			Limit:       10,
		})
	})

	resp, err := c.ListEvaluations(context.Background(), &ListEvaluationsParams{
		Maker:   "honda",
		Rating:  "Excellent Deal",
		Since:   since,
		Limit:   10,
		OrderBy: "listing_price",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Evaluations, 1)
	assert.Equal(t, "e1", resp.Evaluations[0].ID)
}

func TestClient_ListEvaluations_NoParams(t *testing.T) {
	t.Parallel()

	c := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"evaluations":[],"total":0,"limit":50,"offset":0}`))
	})

	resp, err := c.ListEvaluations(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Evaluations)
}

func TestClient_GetQuota(t *testing.T) {
	t.Parallel()

	c := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/quota", r.URL.Path)
		_, _ = w.Write([]byte(`{"daily_limit":500,"daily_used":3,"remaining":497,"reset_at":"2026-06-16T14:30:00Z"}`))
	})

	q, err := c.GetQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(497), q.Remaining)
}
