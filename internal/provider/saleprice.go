package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/vehicle-deal-checker/internal/metrics"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// DefaultHost is the RapidAPI host of the CIS automotive API.
const DefaultHost = "cis-automotive.p.rapidapi.com"

// statKeys are tried in order; the first truthy one is used.
var statKeys = []string{"median", "average", "mean"}

// SalePriceClient implements BaselineProvider with the CIS salePrice
// endpoint.
type SalePriceClient struct {
	host        string
	baseURL     string
	apiKey      string
	client      *http.Client
	rateLimiter *RateLimiter
	log         *slog.Logger
}

// SalePriceOption configures the SalePriceClient.
type SalePriceOption func(*SalePriceClient)

// WithHost overrides the x-rapidapi-host header. The base URL follows it
// unless set explicitly.
func WithHost(host string) SalePriceOption {
	return func(c *SalePriceClient) {
		if host != "" {
			c.host = host
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) SalePriceOption {
	return func(c *SalePriceClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithAPIKey overrides the RapidAPI key.
func WithAPIKey(key string) SalePriceOption {
	return func(c *SalePriceClient) {
		c.apiKey = key
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) SalePriceOption {
	return func(c *SalePriceClient) {
		c.client = hc
	}
}

// WithRateLimiter puts every call behind r.
func WithRateLimiter(r *RateLimiter) SalePriceOption {
	return func(c *SalePriceClient) {
		c.rateLimiter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SalePriceOption {
	return func(c *SalePriceClient) {
		c.log = l
	}
}

// NewSalePriceClient creates a salePrice client. The API key defaults to
// RAPIDAPI_KEY, then CIS_API_KEY.
func NewSalePriceClient(opts ...SalePriceOption) *SalePriceClient {
	key := os.Getenv("RAPIDAPI_KEY")
	if key == "" {
		key = os.Getenv("CIS_API_KEY")
	}

	c := &SalePriceClient{
		host:   DefaultHost,
		apiKey: key,
		client: &http.Client{Timeout: 20 * time.Second},
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		c.baseURL = "https://" + c.host
	}
	return c
}

type salePriceResponse struct {
	Data json.RawMessage `json:"data"`
}

// FetchCandidates implements BaselineProvider. Rows without usable
// statistics are returned with a zero price so the matcher can skip them.
func (c *SalePriceClient) FetchCandidates(
	ctx context.Context,
	brand, region string,
) (_ []domain.BaselineCandidate, err error) {
	ctx, span := tracer.Start(ctx, "salePrice.FetchCandidates", trace.WithAttributes(
		attribute.String("brand", brand),
		attribute.String("region", region),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.apiKey == "" {
		return nil, fmt.Errorf("salePrice API key is not set: %w", domain.ErrConfig)
	}
	if strings.TrimSpace(brand) == "" {
		return nil, fmt.Errorf("brand is required: %w", domain.ErrConfig)
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.ProviderDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.ProviderDailyUsage.Set(float64(c.rateLimiter.Status().Used))
	}
	metrics.ProviderCallsTotal.Inc()

	body, err := c.get(ctx, brand, region)
	if err != nil {
		metrics.ProviderErrorsTotal.Inc()
		return nil, err
	}

	var resp salePriceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.ProviderErrorsTotal.Inc()
		return nil, fmt.Errorf("parsing salePrice response: %w", err)
	}

	candidates := ParseCandidates(resp.Data)
	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	c.log.Debug("fetched salePrice candidates",
		"brand", brand,
		"region", region,
		"count", len(candidates),
	)
	return candidates, nil
}

func (c *SalePriceClient) get(ctx context.Context, brand, region string) ([]byte, error) {
	params := url.Values{}
	params.Set("brandName", brand)
	if region != "" {
		params.Set("regionName", region)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/salePrice?"+params.Encode(), http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing salePrice request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("salePrice API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// ParseCandidates converts the salePrice "data" member into candidates. A
// list yields one candidate per row; a single object yields one unnamed
// candidate; anything else yields none.
func ParseCandidates(data json.RawMessage) []domain.BaselineCandidate {
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err == nil {
		out := make([]domain.BaselineCandidate, 0, len(rows))
		for _, row := range rows {
			out = append(out, domain.BaselineCandidate{
				Name:             rowName(row),
				StatisticalPrice: statValue(row),
			})
		}
		return out
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil && obj != nil {
		return []domain.BaselineCandidate{{StatisticalPrice: statValue(obj)}}
	}
	return nil
}

func rowName(row map[string]any) string {
	switch v := row["name"].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// statValue returns the first truthy statistic as a number, or 0 when it is
// not numeric.
func statValue(row map[string]any) float64 {
	for _, k := range statKeys {
		switch v := row[k].(type) {
		case float64:
			if v != 0 {
				return v
			}
		case string:
			if v == "" {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0
			}
			return f
		case nil:
			continue
		default:
			return 0
		}
	}
	return 0
}
