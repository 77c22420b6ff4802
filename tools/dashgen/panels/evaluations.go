package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/bargauge"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// EvaluationsByRating shows completed evaluations per minute, stacked by
// deal rating.
func EvaluationsByRating() *timeseries.PanelBuilder {
	return series("Evaluations / min", "Completed evaluations per minute by deal rating", TSWidth).
		WithTarget(PromQuery(`vdc:evaluations:rate5m * 60`, "{{rating}}", "A")).
		FillOpacity(30).
		LineWidth(1).
		Legend(tableLegend("mean", "max")).
		Tooltip(multiTooltip())
}

// EvaluationErrors shows failed evaluations by pipeline stage.
func EvaluationErrors() *timeseries.PanelBuilder {
	return series("Evaluation Errors", "Failed evaluations per second by stage", TSWidth).
		WithTarget(PromQuery(`vdc:evaluation_errors:rate5m`, "{{stage}}", "A")).
		Thresholds(warnAt(0.01, 0.1))
}

// ValuationDuration shows valuation latency, baseline lookup included.
func ValuationDuration() *timeseries.PanelBuilder {
	return percentiles(
		series("Valuation Duration", "Valuation latency percentiles including the baseline lookup", TSWidth),
		"vdc_valuation_duration_seconds", 0.50, 0.95,
	)
}

// DiscountDistribution buckets how far listing prices sit from their
// valuations over the last hour.
func DiscountDistribution() *bargauge.PanelBuilder {
	return bargauge.NewPanelBuilder().
		Title("Discount Distribution").
		Description("Listing price relative to valuation, in percent (negative = below value)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(increase(vdc_valuation_discount_percent_bucket{job=%q}[1h])) by (le)`, Job),
			"{{le}}", "A",
		)).
		Orientation(common.VizOrientationHorizontal).
		Min(0).
		Thresholds(greenOnly()).
		ColorScheme(paletteClassic())
}
