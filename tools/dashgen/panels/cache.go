package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CacheHitRatio shows the hit ratio per key kind (baseline, extract).
func CacheHitRatio() *timeseries.PanelBuilder {
	return series("Cache Hit Ratio", "Share of baseline and extraction lookups served from cache", TSWidth).
		WithTarget(PromQuery(`vdc:cache_hit_ratio:rate5m * 100`, "{{kind}}", "A")).
		Unit("percent")
}

// CacheEvictions counts expired entries removed by the sweep job.
func CacheEvictions() *stat.PanelBuilder {
	return countStat("Cache Evictions (24h)",
		"Expired in-memory cache entries removed by the sweep job",
		jobIncrease("vdc_cache_evictions_total", "24h"), TSWidth)
}
