package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// AlertsRate shows deal alerts fired per second.
func AlertsRate() *timeseries.PanelBuilder {
	return series("Deal Alerts Rate", "Rate of deal alerts fired per second", TSWidth).
		WithTarget(PromQuery(
			fmt.Sprintf(`sum(rate(vdc_alerts_fired_total{job=%q}[5m]))`, Job), "alerts/s", "A",
		))
}

// NotificationLatency shows p95 Discord webhook latency.
func NotificationLatency() *timeseries.PanelBuilder {
	return series("Notification Latency (p95)", "95th percentile Discord webhook latency", TSWidth).
		WithTarget(PromQuery(`vdc:notification_duration:p95_5m`, "p95", "A")).
		Unit("s").
		Thresholds(warnAt(1, 5))
}

// NotificationFailures counts failed deliveries over the last day.
func NotificationFailures() *stat.PanelBuilder {
	return countStat("Notification Failures (24h)",
		"Failed alert notification deliveries in the last 24 hours",
		jobIncrease("vdc_notification_failures_total", "24h"), TSWidth).
		Thresholds(warnAt(1, 5)).
		ColorMode(common.BigValueColorModeBackground)
}
