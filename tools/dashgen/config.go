package main

import "errors"

// KnownMetrics is the set of metric names exported by vehicle-deal-checker
// plus recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"vdc_http_request_duration_seconds": true,
	"vdc_http_requests_total":           true,

	// Health metrics.
	"vdc_healthz_up": true,
	"vdc_readyz_up":  true,

	// Evaluation metrics.
	"vdc_evaluations_total":             true,
	"vdc_evaluation_errors_total":       true,
	"vdc_valuation_duration_seconds":    true,
	"vdc_valuation_discount_percent":    true,
	"vdc_remote_adjust_fallbacks_total": true,
	"vdc_evaluations_pruned_total":      true,

	// Extraction metrics.
	"vdc_extraction_duration_seconds": true,
	"vdc_extraction_failures_total":   true,

	// salePrice API metrics.
	"vdc_provider_calls_total":            true,
	"vdc_provider_errors_total":           true,
	"vdc_provider_daily_usage":            true,
	"vdc_provider_daily_limit_hits_total": true,

	// Cache metrics.
	"vdc_cache_hits_total":      true,
	"vdc_cache_misses_total":    true,
	"vdc_cache_evictions_total": true,

	// Alert metrics.
	"vdc_alerts_fired_total":            true,
	"vdc_notification_failures_total":   true,
	"vdc_notification_duration_seconds": true,

	// Recording rules.
	"vdc:http_requests:rate5m":         true,
	"vdc:http_errors:rate5m":           true,
	"vdc:evaluations:rate5m":           true,
	"vdc:evaluation_errors:rate5m":     true,
	"vdc:extraction_failures:rate5m":   true,
	"vdc:provider_calls:rate5m":        true,
	"vdc:provider_errors:rate5m":       true,
	"vdc:cache_hit_ratio:rate5m":       true,
	"vdc:notification_duration:p95_5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool

	// ProviderDailyLimit mirrors provider.rate_limit.daily_limit in the
	// server config; quota panels and alerts are scaled to it.
	ProviderDailyLimit int
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,

		ProviderDailyLimit: 1000,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	if c.ProviderDailyLimit <= 0 {
		return errors.New("provider daily limit must be positive")
	}
	return nil
}
