package panels

import "github.com/grafana/grafana-foundation-sdk/go/timeseries"

// RequestRate shows HTTP requests per second.
func RequestRate() *timeseries.PanelBuilder {
	return series("Request Rate", "HTTP requests per second", ThirdWidth).
		WithTarget(PromQuery(`vdc:http_requests:rate5m`, "req/s", "A")).
		Unit("reqps").
		Legend(tableLegend("mean", "max")).
		Tooltip(multiTooltip())
}

// LatencyPercentiles shows p50, p95 and p99 request latency.
func LatencyPercentiles() *timeseries.PanelBuilder {
	return percentiles(
		series("Latency Percentiles", "HTTP request duration percentiles", ThirdWidth),
		"vdc_http_request_duration_seconds", 0.50, 0.95, 0.99,
	)
}

// ErrorRate shows 5xx responses as a share of all requests.
func ErrorRate() *timeseries.PanelBuilder {
	return series("Error Rate %", "HTTP 5xx error rate as percentage of total requests", ThirdWidth).
		WithTarget(PromQuery(`vdc:http_errors:rate5m / vdc:http_requests:rate5m * 100`, "error %", "A")).
		Unit("percent").
		Thresholds(warnAt(1, 5)).
		ColorScheme(byThresholds())
}
