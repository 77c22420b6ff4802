package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

// ExtractionDuration shows LLM extraction latency, page fetch included.
func ExtractionDuration() *timeseries.PanelBuilder {
	return percentiles(
		series("Extraction Duration", "Listing fetch plus LLM extraction latency", TSWidth),
		"vdc_extraction_duration_seconds", 0.50, 0.95,
	)
}

// ExtractionFailures shows failed extractions per second.
func ExtractionFailures() *timeseries.PanelBuilder {
	return series("Extraction Failures", "Listing extraction failure rate per second", TSWidth).
		WithTarget(PromQuery(`vdc:extraction_failures:rate5m`, "failures/s", "A")).
		Thresholds(warnAt(0.01, 0.1)).
		ColorScheme(byThresholds())
}
