// Package engine orchestrates the valuation pipeline: baseline lookup,
// age/mileage adjustment, deal rating, risk flags, and the optional history
// and alerting side effects.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/vehicle-deal-checker/internal/cache"
	"github.com/donaldgifford/vehicle-deal-checker/internal/metrics"
	"github.com/donaldgifford/vehicle-deal-checker/internal/notify"
	"github.com/donaldgifford/vehicle-deal-checker/internal/provider"
	"github.com/donaldgifford/vehicle-deal-checker/internal/store"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/extract"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

const instrumentationName = "github.com/donaldgifford/vehicle-deal-checker/internal/engine"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	// Exported over OTLP alongside the Prometheus counters.
	evaluationCounter, _ = meter.Int64Counter("vdc.evaluations",
		metric.WithDescription("Listings evaluated, by deal rating."))
	valuationHistogram, _ = meter.Int64Histogram("vdc.valuation.price",
		metric.WithDescription("Estimated market value of evaluated listings."),
		metric.WithUnit("{USD}"))
)

// Valuation sources.
const (
	SourceMock      = "Mock"
	SourceSalePrice = "CIS salePrice (model row) + age/mileage adjust"
)

// mockMarkup is applied to the listing price in mock mode.
const mockMarkup = 1.08

// Engine runs valuations and full listing evaluations. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	provider  provider.BaselineProvider
	adjuster  Adjuster
	extractor extract.Extractor
	store     store.Store
	notifier  notify.Notifier
	log       *slog.Logger

	extractCache  cache.Cache
	extractTTL    time.Duration
	mockMode      bool
	currentYear   int
	nowFunc       func() time.Time
	defaultRegion string
	alertRatings  []domain.DealRatingKind
	flagRules     []valuation.FlagRule
}

// NewEngine creates an Engine that looks up baselines through p. Without
// further options it adjusts locally with the default parameters and keeps
// no history.
func NewEngine(p provider.BaselineProvider, opts ...EngineOption) *Engine {
	eng := &Engine{
		provider:     p,
		adjuster:     NewLocalAdjuster(valuation.DefaultAdjustmentConfig()),
		log:          slog.Default(),
		nowFunc:      time.Now,
		alertRatings: []domain.DealRatingKind{domain.RatingExcellent},
		flagRules:    valuation.DefaultFlagRules,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.notifier == nil {
		eng.notifier = notify.NewNoOpNotifier(eng.log)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithAdjuster sets the price adjustment strategy.
func WithAdjuster(a Adjuster) EngineOption {
	return func(e *Engine) {
		e.adjuster = a
	}
}

// WithExtractor sets the listing extractor used by EvaluateURL and
// EvaluateText.
func WithExtractor(x extract.Extractor) EngineOption {
	return func(e *Engine) {
		e.extractor = x
	}
}

// WithStore enables evaluation history.
func WithStore(s store.Store) EngineOption {
	return func(e *Engine) {
		e.store = s
	}
}

// WithNotifier sets the deal alert notifier.
func WithNotifier(n notify.Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithExtractCache caches extracted records by listing URL for ttl.
func WithExtractCache(c cache.Cache, ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.extractCache = c
		e.extractTTL = ttl
	}
}

// WithMockMode bypasses the provider and prices every listing at a fixed
// markup over its asking price.
func WithMockMode(on bool) EngineOption {
	return func(e *Engine) {
		e.mockMode = on
	}
}

// WithCurrentYear pins the year used to compute vehicle age. Zero uses the
// clock year.
func WithCurrentYear(year int) EngineOption {
	return func(e *Engine) {
		e.currentYear = year
	}
}

// WithNowFunc overrides the clock.
func WithNowFunc(f func() time.Time) EngineOption {
	return func(e *Engine) {
		e.nowFunc = f
	}
}

// WithDefaultRegion sets the region used when a record has none.
func WithDefaultRegion(region string) EngineOption {
	return func(e *Engine) {
		e.defaultRegion = region
	}
}

// WithAlertRatings sets the deal ratings that trigger an alert.
func WithAlertRatings(ratings ...domain.DealRatingKind) EngineOption {
	return func(e *Engine) {
		e.alertRatings = ratings
	}
}

// WithFlagRules replaces the risk flag rules.
func WithFlagRules(rules []valuation.FlagRule) EngineOption {
	return func(e *Engine) {
		e.flagRules = rules
	}
}

// CurrentYear returns the year used to compute vehicle age.
func (eng *Engine) CurrentYear() int {
	if eng.currentYear > 0 {
		return eng.currentYear
	}
	return eng.nowFunc().Year()
}

// Valuate estimates the market value of rec. maker, year, and mileage are
// required. Provider failures are wrapped with domain.ErrProvider.
func (eng *Engine) Valuate(
	ctx context.Context,
	rec domain.VehicleRecord,
) (_ *domain.Valuation, err error) {
	ctx, span := tracer.Start(ctx, "engine.Valuate", trace.WithAttributes(
		attribute.String("maker", rec.Maker),
		attribute.String("model", rec.Model),
		attribute.Bool("mock", eng.mockMode),
	))
	start := time.Now()
	defer func() {
		metrics.ValuationDuration.Observe(time.Since(start).Seconds())
		endSpan(span, err)
	}()

	if eng.mockMode {
		return mockValuation(rec), nil
	}

	maker := strings.TrimSpace(rec.Maker)
	if maker == "" || rec.Year == nil || rec.Mileage == nil {
		return nil, fmt.Errorf("maker/year/mileage are required for valuation: %w", domain.ErrMissingField)
	}

	region := rec.RegionName
	if region == "" {
		region = eng.defaultRegion
	}
	bodyType := rec.BodyType
	if bodyType == "" {
		bodyType = domain.BodyOther
	}
	condition := rec.Condition
	if condition == "" {
		condition = domain.ConditionGood
	}

	candidates, err := eng.provider.FetchCandidates(ctx, maker, region)
	if err != nil {
		if errors.Is(err, domain.ErrConfig) {
			return nil, fmt.Errorf("fetching baseline candidates: %w", err)
		}
		return nil, fmt.Errorf("fetching baseline candidates: %w: %w", domain.ErrProvider, err)
	}

	base, err := valuation.Match(maker, region, strings.TrimSpace(rec.Model), candidates)
	if err != nil {
		return nil, fmt.Errorf("matching baseline: %w", err)
	}
	span.SetAttributes(attribute.Int("base_price", base.BasePrice))

	adj, err := eng.adjuster.Adjust(ctx, valuation.AdjustInput{
		BasePrice:   base.BasePrice,
		Year:        *rec.Year,
		Mileage:     *rec.Mileage,
		BodyType:    bodyType,
		Condition:   condition,
		CurrentYear: eng.CurrentYear(),
	})
	if err != nil {
		return nil, fmt.Errorf("adjusting price: %w", err)
	}

	eng.log.Debug("valuated vehicle",
		"maker", maker,
		"model", rec.Model,
		"region", region,
		"base_price", base.BasePrice,
		"fair", adj.Fair,
		"adjuster", eng.adjuster.Name(),
	)

	return &domain.Valuation{
		ValuationPrice: adj.Fair,
		Range:          &domain.PriceRange{Low: adj.Low, High: adj.High},
		AdjustDetail: &domain.AdjustDetail{
			Age:         adj.Age,
			Retention:   adj.Retention,
			UsedBase:    adj.UsedBase,
			DeltaMiles:  adj.DeltaMiles,
			MileageAdj:  adj.MileageAdj,
			BasePrice:   base.BasePrice,
			PickedModel: base.PickedModelName,
			RegionName:  region,
			BrandName:   maker,
		},
		Source: SourceSalePrice,
	}, nil
}

func mockValuation(rec domain.VehicleRecord) *domain.Valuation {
	price := 0
	if rec.Price != nil {
		price = int(float64(*rec.Price) * mockMarkup)
	}
	return &domain.Valuation{ValuationPrice: price, Source: SourceMock}
}

// Baseline resolves the baseline price for a brand, region, and optional
// model without adjusting it. An empty region uses the default region.
func (eng *Engine) Baseline(
	ctx context.Context,
	brand, region, model string,
) (domain.BaselineResult, []domain.BaselineCandidate, error) {
	if region == "" {
		region = eng.defaultRegion
	}
	candidates, err := eng.provider.FetchCandidates(ctx, strings.TrimSpace(brand), region)
	if err != nil {
		if errors.Is(err, domain.ErrConfig) {
			return domain.BaselineResult{}, nil, fmt.Errorf("fetching baseline candidates: %w", err)
		}
		return domain.BaselineResult{}, nil, fmt.Errorf(
			"fetching baseline candidates: %w: %w", domain.ErrProvider, err,
		)
	}

	res, err := valuation.Match(brand, region, strings.TrimSpace(model), candidates)
	if err != nil {
		return domain.BaselineResult{}, candidates, err
	}
	return res, candidates, nil
}

// Flags runs the configured risk flag rules over rec.
func (eng *Engine) Flags(rec domain.VehicleRecord) []domain.Flag {
	return valuation.AnalyzeFlagsWith(rec, eng.flagRules)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
