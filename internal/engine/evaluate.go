package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/vehicle-deal-checker/internal/cache"
	"github.com/donaldgifford/vehicle-deal-checker/internal/metrics"
	"github.com/donaldgifford/vehicle-deal-checker/internal/notify"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

// Evaluation stages, used as the stage label on error metrics.
const (
	stageExtract   = "extract"
	stageValuation = "valuation"
	stageStore     = "store"
)

// ErrNoExtractor is returned by the extracting entry points when the engine
// was built without an extractor.
var ErrNoExtractor = fmt.Errorf("listing extractor is not configured: %w", domain.ErrConfig)

// EvaluateURL extracts the listing at url and evaluates it. Extracted records
// are cached by URL when an extraction cache is configured.
func (eng *Engine) EvaluateURL(ctx context.Context, url string) (*domain.Evaluation, error) {
	ctx, span := tracer.Start(ctx, "engine.EvaluateURL", trace.WithAttributes(
		attribute.String("url", url),
	))
	var err error
	defer func() { endSpan(span, err) }()

	var rec domain.VehicleRecord
	rec, err = eng.extractURL(ctx, url)
	if err != nil {
		metrics.EvaluationErrorsTotal.WithLabelValues(stageExtract).Inc()
		return nil, err
	}

	var eval *domain.Evaluation
	eval, err = eng.Evaluate(ctx, rec)
	return eval, err
}

// EvaluateText extracts a listing from already-fetched content and
// evaluates it.
func (eng *Engine) EvaluateText(ctx context.Context, content, url string) (*domain.Evaluation, error) {
	if eng.extractor == nil {
		return nil, ErrNoExtractor
	}

	start := time.Now()
	rec, err := eng.extractor.ExtractText(ctx, content, url)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExtractionFailuresTotal.Inc()
		metrics.EvaluationErrorsTotal.WithLabelValues(stageExtract).Inc()
		return nil, fmt.Errorf("extracting listing: %w", err)
	}
	return eng.Evaluate(ctx, rec)
}

// Evaluate values rec, rates the deal, and raises risk flags. When history
// is enabled the evaluation is saved; when its rating is in the alert set a
// deal alert is sent. Neither side effect fails the evaluation.
func (eng *Engine) Evaluate(ctx context.Context, rec domain.VehicleRecord) (*domain.Evaluation, error) {
	val, err := eng.Valuate(ctx, rec)
	if err != nil {
		metrics.EvaluationErrorsTotal.WithLabelValues(stageValuation).Inc()
		return nil, err
	}

	eval := &domain.Evaluation{
		Vehicle:    rec,
		Valuation:  *val,
		DealRating: valuation.ClassifyPtr(rec.Price, val.ValuationPrice),
		Flags:      eng.Flags(rec),
	}

	metrics.EvaluationsTotal.WithLabelValues(string(eval.DealRating.Rating)).Inc()
	ratingAttr := metric.WithAttributes(attribute.String("rating", string(eval.DealRating.Rating)))
	evaluationCounter.Add(ctx, 1, ratingAttr)
	valuationHistogram.Record(ctx, int64(val.ValuationPrice), ratingAttr)
	if rec.Price != nil && val.ValuationPrice > 0 {
		diff := float64(val.ValuationPrice - *rec.Price)
		metrics.ValuationDiscountPercent.Observe(diff / float64(val.ValuationPrice) * 100)
	}

	eng.save(ctx, eval)
	eng.alert(ctx, eval)

	eng.log.Info("evaluated listing",
		"maker", rec.Maker,
		"model", rec.Model,
		"valuation", val.ValuationPrice,
		"rating", eval.DealRating.Rating,
		"flags", len(eval.Flags),
		"id", eval.ID,
	)
	return eval, nil
}

func (eng *Engine) extractURL(ctx context.Context, url string) (domain.VehicleRecord, error) {
	if eng.extractor == nil {
		return domain.VehicleRecord{}, ErrNoExtractor
	}

	key := cache.ExtractKey(url)
	if eng.extractCache != nil {
		rec, ok, err := cache.GetJSON[domain.VehicleRecord](ctx, eng.extractCache, key)
		switch {
		case err != nil:
			eng.log.Warn("extraction cache read failed", "url", url, "error", err)
		case ok:
			metrics.CacheHitsTotal.WithLabelValues(cache.Kind(key)).Inc()
			return rec, nil
		default:
			metrics.CacheMissesTotal.WithLabelValues(cache.Kind(key)).Inc()
		}
	}

	start := time.Now()
	rec, err := eng.extractor.ExtractURL(ctx, url)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExtractionFailuresTotal.Inc()
		return domain.VehicleRecord{}, fmt.Errorf("extracting listing: %w", err)
	}

	if eng.extractCache != nil {
		if err := cache.SetJSON(ctx, eng.extractCache, key, rec, eng.extractTTL); err != nil {
			eng.log.Warn("extraction cache write failed", "url", url, "error", err)
		}
	}
	return rec, nil
}

func (eng *Engine) save(ctx context.Context, eval *domain.Evaluation) {
	if eng.store == nil {
		return
	}
	if err := eng.store.SaveEvaluation(ctx, eval); err != nil {
		metrics.EvaluationErrorsTotal.WithLabelValues(stageStore).Inc()
		eng.log.Error("saving evaluation failed", "error", err)
	}
}

func (eng *Engine) alert(ctx context.Context, eval *domain.Evaluation) {
	if !slices.Contains(eng.alertRatings, eval.DealRating.Rating) {
		return
	}

	if err := eng.notifier.SendAlert(ctx, notify.NewAlertPayload(eval)); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		eng.log.Error("sending deal alert failed",
			"rating", eval.DealRating.Rating,
			"error", err,
		)
		return
	}
	metrics.AlertsFiredTotal.Inc()
}

// PruneHistory deletes evaluations older than retention. It is a no-op when
// history is disabled or retention is not positive.
func (eng *Engine) PruneHistory(ctx context.Context, retention time.Duration) (int64, error) {
	if eng.store == nil || retention <= 0 {
		return 0, nil
	}

	n, err := eng.store.PruneEvaluations(ctx, eng.nowFunc().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("pruning evaluations: %w", err)
	}
	metrics.EvaluationsPrunedTotal.Add(float64(n))
	return n, nil
}
