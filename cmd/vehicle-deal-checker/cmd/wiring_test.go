package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vehicle-deal-checker/internal/config"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/extract"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/logger"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

const salePriceFixture = `{"data":[
	{"name":"Accord","median":30000},
	{"name":"Civic","median":25000},
	{"name":"CR-V","median":32000}
]}`

func newSalePriceServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/salePrice", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-rapidapi-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(salePriceFixture))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	return cfg
}

func TestBuildApp_ServesValuations(t *testing.T) {
	var calls atomic.Int32
	srv := newSalePriceServer(t, &calls)

	cfg := testConfig(t, `
provider:
  base_url: `+srv.URL+`
  api_key: test-key
cache:
  backend: memory
valuation:
  current_year: 2026
`)

	a, err := buildApp(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.store)
	assert.NotNil(t, a.sweeper)
	assert.Empty(t, a.checks)

	e := newServer(a, logger.Discard())

	body := `{"maker":"Honda","model":"Civic","year":2018,"mileage":60000,` +
		`"regionName":"REGION_STATE_AZ","body_type":"sedan","condition":"good"}`

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/valuate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got domain.Valuation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 11748, got.ValuationPrice)
	}

	assert.Equal(t, int32(1), calls.Load(), "second lookup should be served from cache")
}

func TestNewServer_OperationalEndpoints(t *testing.T) {
	cfg := testConfig(t, `
cache:
  backend: none
valuation:
  api_mode: mock
`)

	a, err := buildApp(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.cache)
	assert.Nil(t, a.sweeper)

	e := newServer(a, logger.Discard())

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/healthz", wantStatus: http.StatusOK, wantBody: `"ok"`},
		{path: "/readyz", wantStatus: http.StatusOK, wantBody: `"ready"`},
		{path: "/metrics", wantStatus: http.StatusOK, wantBody: "vdc_"},
		{path: "/openapi.json", wantStatus: http.StatusOK, wantBody: "/api/v1/valuate"},
		{path: "/api/v1/quota", wantStatus: http.StatusOK, wantBody: `"daily_limit":1000`},
		{path: "/api/v1/evaluations", wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestNewLLMBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      config.LLMConfig
		wantName string
		wantErr  bool
	}{
		{
			name:     "gemini",
			cfg:      config.LLMConfig{Backend: config.BackendGemini, Gemini: config.GeminiConfig{Model: "gemini-1.5-pro"}},
			wantName: "gemini",
		},
		{
			name:     "anthropic",
			cfg:      config.LLMConfig{Backend: config.BackendAnthropic, Anthropic: config.AnthropicConfig{Model: "claude"}},
			wantName: "anthropic",
		},
		{
			name:     "ollama",
			cfg:      config.LLMConfig{Backend: config.BackendOllama, Ollama: config.OllamaConfig{Endpoint: "http://localhost:11434", Model: "llama3"}},
			wantName: "ollama",
		},
		{
			name: "openai compatible",
			cfg: config.LLMConfig{
				Backend:      config.BackendOpenAICompat,
				OpenAICompat: config.OpenAICompatConfig{Endpoint: "http://localhost:8000", Model: "m", APIKey: "k"},
			},
			wantName: "openai_compat",
		},
		{
			name:    "unknown",
			cfg:     config.LLMConfig{Backend: "bard"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := newLLMBackend(&tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown LLM backend")
				return
			}
			require.NoError(t, err)
			assert.Implements(t, (*extract.LLMBackend)(nil), b)
			assert.Equal(t, tt.wantName, b.Name())
		})
	}
}

func TestAlertRatings(t *testing.T) {
	t.Parallel()

	got := alertRatings([]string{"Excellent Deal", "Good Deal"})
	assert.Equal(t, []domain.DealRatingKind{domain.RatingExcellent, domain.RatingGood}, got)
	assert.Empty(t, alertRatings(nil))
}

func TestBuildApp_RedisUnreachable(t *testing.T) {
	cfg := testConfig(t, `
cache:
  backend: redis
  redis:
    addr: 127.0.0.1:1
`)

	_, err := buildApp(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to redis")
}
