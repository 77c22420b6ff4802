package rules

import "fmt"

// RecordingRules returns the pre-computed rates shared by the dashboard and
// the alerts.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("vdc-recording-rules",
		record("vdc:http_requests:rate5m", `sum(rate(vdc_http_requests_total[5m]))`),
		record("vdc:http_errors:rate5m", `sum(rate(vdc_http_requests_total{status=~"5.."}[5m]))`),
		record("vdc:evaluations:rate5m", `sum by (rating) (rate(vdc_evaluations_total[5m]))`),
		record("vdc:evaluation_errors:rate5m", `sum by (stage) (rate(vdc_evaluation_errors_total[5m]))`),
		record("vdc:extraction_failures:rate5m", `rate(vdc_extraction_failures_total[5m])`),
		record("vdc:provider_calls:rate5m", `rate(vdc_provider_calls_total[5m])`),
		record("vdc:provider_errors:rate5m", `rate(vdc_provider_errors_total[5m])`),
		record("vdc:cache_hit_ratio:rate5m", cacheHitRatio()),
		record("vdc:notification_duration:p95_5m",
			`histogram_quantile(0.95, sum(rate(vdc_notification_duration_seconds_bucket[5m])) by (le))`),
	)
}

func cacheHitRatio() string {
	hits := `sum by (kind) (rate(vdc_cache_hits_total[5m]))`
	misses := `sum by (kind) (rate(vdc_cache_misses_total[5m]))`
	return fmt.Sprintf("%s / (%s + %s)", hits, hits, misses)
}
