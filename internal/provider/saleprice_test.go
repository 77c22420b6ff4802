package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vehicle-deal-checker/internal/provider"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/logger"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

func TestSalePriceClient_FetchCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		brand      string
		region     string
		apiKey     string
		handler    http.HandlerFunc
		want       []domain.BaselineCandidate
		wantErrIs  error
		errContain string
	}{
		{
			name:   "list response with region",
			brand:  "Honda",
			region: "REGION_STATE_AZ",
			apiKey: "rk",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/salePrice", r.URL.Path)
				assert.Equal(t, "Honda", r.URL.Query().Get("brandName"))
				assert.Equal(t, "REGION_STATE_AZ", r.URL.Query().Get("regionName"))
				assert.Equal(t, "rk", r.Header.Get("x-rapidapi-key"))
				assert.Equal(t, provider.DefaultHost, r.Header.Get("x-rapidapi-host"))
				_, _ = w.Write([]byte(`{"brandName":"Honda","data":[
					{"name":"Civic","median":24500,"average":25010.4},
					{"name":"Accord","median":0,"average":"29950.5"},
					{"name":"CR-V","mean":31000}
				]}`))
			},
			want: []domain.BaselineCandidate{
				{Name: "Civic", StatisticalPrice: 24500},
				{Name: "Accord", StatisticalPrice: 29950.5},
				{Name: "CR-V", StatisticalPrice: 31000},
			},
		},
		{
			name:   "region omitted",
			brand:  "Kia",
			apiKey: "rk",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, present := r.URL.Query()["regionName"]
				assert.False(t, present)
				_, _ = w.Write([]byte(`{"data":[]}`))
			},
			want: []domain.BaselineCandidate{},
		},
		{
			name:   "object response",
			brand:  "Tesla",
			apiKey: "rk",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data":{"median":41000.4,"count":120}}`))
			},
			want: []domain.BaselineCandidate{{StatisticalPrice: 41000.4}},
		},
		{
			name:   "missing data",
			brand:  "Saab",
			apiKey: "rk",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"message":"no data"}`))
			},
			want: nil,
		},
		{
			name:       "missing API key",
			brand:      "Honda",
			apiKey:     "",
			handler:    func(_ http.ResponseWriter, _ *http.Request) { t.Error("should not be called") },
			wantErrIs:  domain.ErrConfig,
			errContain: "API key is not set",
		},
		{
			name:       "missing brand",
			brand:      "  ",
			apiKey:     "rk",
			handler:    func(_ http.ResponseWriter, _ *http.Request) { t.Error("should not be called") },
			wantErrIs:  domain.ErrConfig,
			errContain: "brand is required",
		},
		{
			name:   "upstream error",
			brand:  "Honda",
			apiKey: "rk",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"You are not subscribed to this API."}`))
			},
			errContain: "salePrice API error (status 403)",
		},
		{
			name:   "invalid JSON",
			brand:  "Honda",
			apiKey: "rk",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			errContain: "parsing salePrice response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := provider.NewSalePriceClient(
				provider.WithBaseURL(srv.URL),
				provider.WithHTTPClient(srv.Client()),
				provider.WithAPIKey(tt.apiKey),
				provider.WithLogger(logger.Discard()),
			)

			got, err := c.FetchCandidates(context.Background(), tt.brand, tt.region)

			if tt.errContain != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				if tt.wantErrIs != nil {
					require.ErrorIs(t, err, tt.wantErrIs)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSalePriceClient_RateLimited(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := provider.NewSalePriceClient(
		provider.WithBaseURL(srv.URL),
		provider.WithHTTPClient(srv.Client()),
		provider.WithAPIKey("rk"),
		provider.WithRateLimiter(provider.NewRateLimiter(100, 10, 1)),
		provider.WithLogger(logger.Discard()),
	)

	_, err := c.FetchCandidates(context.Background(), "Honda", "")
	require.NoError(t, err)

	_, err = c.FetchCandidates(context.Background(), "Honda", "")
	require.ErrorIs(t, err, provider.ErrDailyLimitReached)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewSalePriceClient_HostSetsBaseURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cis.example.test", r.Header.Get("x-rapidapi-host"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := provider.NewSalePriceClient(
		provider.WithHost("cis.example.test"),
		provider.WithBaseURL(srv.URL),
		provider.WithHTTPClient(srv.Client()),
		provider.WithAPIKey("rk"),
	)
	_, err := c.FetchCandidates(context.Background(), "Ford", "")
	require.NoError(t, err)
}

func TestParseCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want []domain.BaselineCandidate
	}{
		{
			name: "first truthy statistic wins",
			data: `[{"name":"A","median":0,"average":0,"mean":"12.5"}]`,
			want: []domain.BaselineCandidate{{Name: "A", StatisticalPrice: 12.5}},
		},
		{
			name: "unparseable statistic is zero",
			data: `[{"name":"B","median":"n/a","average":100}]`,
			want: []domain.BaselineCandidate{{Name: "B", StatisticalPrice: 0}},
		},
		{
			name: "non-string name",
			data: `[{"name":300,"median":50000}]`,
			want: []domain.BaselineCandidate{{Name: "300", StatisticalPrice: 50000}},
		},
		{
			name: "no statistics",
			data: `[{"name":"C"}]`,
			want: []domain.BaselineCandidate{{Name: "C"}},
		},
		{
			name: "null",
			data: `null`,
			want: []domain.BaselineCandidate{},
		},
		{
			name: "scalar",
			data: `42`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, provider.ParseCandidates(json.RawMessage(tt.data)))
		})
	}
}
