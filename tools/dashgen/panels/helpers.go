// Package panels builds the Grafana panels for vehicle-deal-checker metrics.
package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/cog"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// Job is the Prometheus job label the service is scraped under.
const Job = "vehicle-deal-checker"

// Grid sizes on Grafana's 24-column layout.
const (
	StatWidth  = 6
	StatHeight = 4

	TSWidth  = 12
	TSHeight = 8

	ThirdWidth = 8
)

// refIDs names query targets in panel order.
var refIDs = []string{"A", "B", "C", "D"}

// DSRef points at the ${datasource} template variable.
func DSRef() dashboard.DataSourceRef {
	return dashboard.DataSourceRef{
		Type: cog.ToPtr("prometheus"),
		Uid:  cog.ToPtr("${datasource}"),
	}
}

// Quantile returns a histogram_quantile over metric's buckets.
func Quantile(q float64, metric string) string {
	return fmt.Sprintf(
		`histogram_quantile(%.2f, sum(rate(%s_bucket{job=%q}[5m])) by (le))`, q, metric, Job,
	)
}

// PromQuery builds a Prometheus target.
func PromQuery(expr, legendFormat, refID string) *prometheus.DataqueryBuilder {
	return prometheus.NewDataqueryBuilder().
		Expr(expr).
		LegendFormat(legendFormat).
		RefId(refID)
}

// jobIncrease wraps a counter in increase() over window, scoped to Job.
func jobIncrease(metric, window string) string {
	return fmt.Sprintf(`increase(%s{job=%q}[%s])`, metric, Job, window)
}

// series returns a line chart with the dashboard's common styling. Callers
// add targets, units and thresholds.
func series(title, description string, span uint32) *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(span).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(greenOnly()).
		ColorScheme(paletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// percentiles adds one target per quantile of a histogram to b.
func percentiles(b *timeseries.PanelBuilder, metric string, qs ...float64) *timeseries.PanelBuilder {
	for i, q := range qs {
		b = b.WithTarget(PromQuery(Quantile(q, metric), fmt.Sprintf("p%.0f", q*100), refIDs[i]))
	}
	return b.
		Unit("s").
		Legend(tableLegend("mean", "max")).
		Tooltip(multiTooltip())
}

// statusStat is a 0/1 gauge-style stat with a red background at 0.
func statusStat(title, description, expr string) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(expr, "", "A")).
		Thresholds(redBelow(1)).
		ColorScheme(byThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// countStat shows a single counter increase with a sparkline.
func countStat(title, description, expr string, span uint32) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(span).
		WithTarget(PromQuery(expr, "", "A")).
		Thresholds(greenOnly()).
		ColorScheme(byThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

func steps(s ...dashboard.Threshold) cog.Builder[dashboard.ThresholdsConfig] {
	return dashboard.NewThresholdsConfigBuilder().
		Mode(dashboard.ThresholdsModeAbsolute).
		Steps(s)
}

func redBelow(green float64) cog.Builder[dashboard.ThresholdsConfig] {
	return steps(
		dashboard.Threshold{Color: "red"},
		dashboard.Threshold{Value: cog.ToPtr(green), Color: "green"},
	)
}

// warnAt is green below yellow, then yellow, then red from red upward.
func warnAt(yellow, red float64) cog.Builder[dashboard.ThresholdsConfig] {
	return steps(
		dashboard.Threshold{Color: "green"},
		dashboard.Threshold{Value: cog.ToPtr(yellow), Color: "yellow"},
		dashboard.Threshold{Value: cog.ToPtr(red), Color: "red"},
	)
}

func greenOnly() cog.Builder[dashboard.ThresholdsConfig] {
	return steps(dashboard.Threshold{Color: "green"})
}

func byThresholds() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(dashboard.FieldColorModeIdThresholds)
}

func paletteClassic() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(dashboard.FieldColorModeIdPaletteClassic)
}

func tableLegend(calcs ...string) *common.VizLegendOptionsBuilder {
	return common.NewVizLegendOptionsBuilder().
		DisplayMode(common.LegendDisplayModeTable).
		Placement(common.LegendPlacementBottom).
		Calcs(calcs)
}

func multiTooltip() *common.VizTooltipOptionsBuilder {
	return common.NewVizTooltipOptionsBuilder().
		Mode(common.TooltipDisplayModeMulti).
		Sort(common.SortOrderDescending)
}
