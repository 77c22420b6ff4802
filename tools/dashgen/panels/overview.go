package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/gauge"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// HealthzStat shows the liveness probe result.
func HealthzStat() *stat.PanelBuilder {
	return statusStat("Healthz", "Health check status (1 = ok, 0 = failing)", `vdc_healthz_up`)
}

// ReadyzStat shows whether the database and cache are reachable.
func ReadyzStat() *stat.PanelBuilder {
	return statusStat("Readyz", "Readiness check status (1 = ready, 0 = not ready)", `vdc_readyz_up`)
}

// QuotaGauge shows salePrice usage as a percentage of dailyLimit.
func QuotaGauge(dailyLimit int) *gauge.PanelBuilder {
	return gauge.NewPanelBuilder().
		Title("salePrice Quota %").
		Description(fmt.Sprintf("Daily salePrice API usage as percentage of the %d call limit", dailyLimit)).
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(fmt.Sprintf("vdc_provider_daily_usage / %d * 100", dailyLimit), "", "A")).
		Unit("percent").
		Min(0).
		Max(100).
		Thresholds(warnAt(80, 95)).
		ColorScheme(byThresholds())
}

// UptimeStat shows time since process start.
func UptimeStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Uptime").
		Description("Time since process start").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(fmt.Sprintf(`time() - process_start_time_seconds{job=%q}`, Job), "", "A")).
		Unit("s").
		Thresholds(greenOnly()).
		ColorScheme(byThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}
