// Package dashboards assembles Grafana dashboards from the panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/cog"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/vehicle-deal-checker/tools/dashgen/panels"
)

type row struct {
	title  string
	panels []cog.Builder[dashboard.Panel]
}

// overviewRows lists the rows top to bottom.
func overviewRows(dailyLimit int) []row {
	return []row{
		{"Overview", []cog.Builder[dashboard.Panel]{
			panels.HealthzStat(),
			panels.ReadyzStat(),
			panels.QuotaGauge(dailyLimit),
			panels.UptimeStat(),
		}},
		{"HTTP", []cog.Builder[dashboard.Panel]{
			panels.RequestRate(),
			panels.LatencyPercentiles(),
			panels.ErrorRate(),
		}},
		{"Evaluations", []cog.Builder[dashboard.Panel]{
			panels.EvaluationsByRating(),
			panels.EvaluationErrors(),
			panels.ValuationDuration(),
			panels.DiscountDistribution(),
		}},
		{"salePrice API", []cog.Builder[dashboard.Panel]{
			panels.ProviderCallsRate(),
			panels.DailyUsage(dailyLimit),
			panels.LimitHits(),
		}},
		{"Extraction", []cog.Builder[dashboard.Panel]{
			panels.ExtractionDuration(),
			panels.ExtractionFailures(),
		}},
		{"Cache", []cog.Builder[dashboard.Panel]{
			panels.CacheHitRatio(),
			panels.CacheEvictions(),
		}},
		{"Alerts", []cog.Builder[dashboard.Panel]{
			panels.AlertsRate(),
			panels.NotificationLatency(),
			panels.NotificationFailures(),
		}},
	}
}

// BuildOverview constructs the VDC Overview dashboard. dailyLimit scales the
// salePrice quota panels.
func BuildOverview(dailyLimit int) *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("VDC Overview").
		Uid("vdc-overview").
		Tags([]string{"vdc", "vehicle-deal-checker"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(dashboard.NewDatasourceVariableBuilder("datasource").
			Label("Datasource").
			Type("prometheus"))

	for _, r := range overviewRows(dailyLimit) {
		rb := dashboard.NewRowBuilder(r.title)
		for _, p := range r.panels {
			rb.WithPanel(p)
		}
		b.WithRow(rb)
	}
	return b
}
