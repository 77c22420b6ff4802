package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ProviderCallsRate shows salePrice calls and failed calls per second.
func ProviderCallsRate() *timeseries.PanelBuilder {
	return series("salePrice Calls", "salePrice API calls and failed calls per second", ThirdWidth).
		WithTarget(PromQuery(`vdc:provider_calls:rate5m`, "calls/s", "A")).
		WithTarget(PromQuery(`vdc:provider_errors:rate5m`, "errors/s", "B")).
		Unit("reqps")
}

// DailyUsage plots the rolling 24h call count against dailyLimit.
func DailyUsage(dailyLimit int) *timeseries.PanelBuilder {
	limit := float64(dailyLimit)
	return series("Daily Usage vs Limit",
		fmt.Sprintf("Rolling 24h salePrice call count (limit: %d)", dailyLimit), ThirdWidth).
		WithTarget(PromQuery(fmt.Sprintf(`vdc_provider_daily_usage{job=%q}`, Job), "usage", "A")).
		Thresholds(warnAt(limit*0.8, limit)).
		ColorScheme(byThresholds())
}

// LimitHits counts daily limit hits over the last day.
func LimitHits() *stat.PanelBuilder {
	return countStat("Limit Hits (24h)",
		"Times the salePrice daily limit was reached in the last 24 hours",
		jobIncrease("vdc_provider_daily_limit_hits_total", "24h"), ThirdWidth).
		Thresholds(warnAt(1, 3)).
		ColorMode(common.BigValueColorModeBackground)
}
