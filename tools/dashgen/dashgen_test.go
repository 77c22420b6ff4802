package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/vehicle-deal-checker/tools/dashgen/dashboards"
	"github.com/donaldgifford/vehicle-deal-checker/tools/dashgen/rules"
	"github.com/donaldgifford/vehicle-deal-checker/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false, ProviderDailyLimit: 1000}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_DailyLimit(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.ProviderDailyLimit = 0
	assert.Error(t, cfg.Validate())
}

func TestAlertRules_ScaleWithDailyLimit(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules(5000)
	var expr string
	for _, r := range cr.Spec.Groups[0].Rules {
		if r.Alert == "VdcProviderQuotaHigh" {
			expr = r.Expr
		}
	}
	assert.Equal(t, "vdc_provider_daily_usage > 4000", expr)
}

func TestRuleNames(t *testing.T) {
	t.Parallel()

	names := rules.Names(rules.RecordingRules())
	require.NotEmpty(t, names)
	assert.Equal(t, "vdc:http_requests:rate5m", names[0])
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	builder := dashboards.BuildOverview(1000)
	dash, err := builder.Build()
	require.NoError(t, err)

	require.NotNil(t, dash.Uid)
	assert.Equal(t, "vdc-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "VDC Overview", *dash.Title)

	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	assert.Len(t, dash.Panels, 7)

	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 21, totalPanels)

	result := validate.Dashboard(dash, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "vdc-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "vdc-recording-rules", group.Name)
	require.Len(t, group.Rules, 9)

	for _, rule := range group.Rules {
		assert.True(t, KnownMetrics[rule.Record], "recording rule %s not in KnownMetrics", rule.Record)
		assert.True(t, strings.HasPrefix(rule.Record, "vdc:"), rule.Record)
	}

	result := validate.Rules(cr, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)

	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules(1000)
	assert.Equal(t, "vdc-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "vdc-alerts", group.Name)

	expectedAlerts := []string{
		"VdcDown",
		"VdcReadinessDown",
		"VdcHighErrorRate",
		"VdcExtractionFailures",
		"VdcProviderErrors",
		"VdcProviderQuotaHigh",
		"VdcProviderLimitReached",
		"VdcRemoteAdjustFallbacks",
		"VdcNotificationFailures",
	}
	require.Len(t, group.Rules, len(expectedAlerts))
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}

	result := validate.Rules(cr, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
}

func TestValidate_RejectsBadExpressions(t *testing.T) {
	t.Parallel()

	cr := rules.PrometheusRule{Spec: rules.PrometheusRuleSpec{Groups: []rules.RuleGroup{{
		Name: "bad",
		Rules: []rules.Rule{
			{Record: "vdc:x:rate5m", Expr: `rate(vdc_http_requests_total[5m]`},
			{Alert: "Unknown", Expr: `vdc_listing_views_total > 1`},
			{Expr: `up`},
		},
	}}}}

	result := validate.Rules(cr, KnownMetrics)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "invalid PromQL")
	assert.Contains(t, result.Errors[1], `unknown metric "vdc_listing_views_total"`)
	assert.Contains(t, result.Errors[2], "neither record nor alert")
	assert.Len(t, result.Warnings, 1)
}

func TestValidateExpr_HistogramSeries(t *testing.T) {
	t.Parallel()

	names, err := validate.Expr(`histogram_quantile(0.9, sum(rate(vdc_valuation_duration_seconds_bucket[5m])) by (le)) > on() vdc_readyz_up`)
	require.NoError(t, err)
	assert.Equal(t, []string{"vdc_readyz_up", "vdc_valuation_duration_seconds_bucket"}, names)
}

func TestRun_WritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputDir = dir

	require.NoError(t, run(cfg, false))

	for _, rel := range []string{
		filepath.Join("grafana", "data", "vdc-overview.json"),
		filepath.Join("prometheus", "vdc-recording-rules.yaml"),
		filepath.Join("prometheus", "vdc-alerts.yaml"),
	} {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		require.NoError(t, err, rel)
		assert.NotEmpty(t, data, rel)
		if filepath.Ext(rel) == ".yaml" {
			assert.True(t, strings.HasPrefix(string(data), generatedHeader), rel)
		}
	}
}

func TestRun_ValidateOnlyWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputDir = dir

	require.NoError(t, run(cfg, true))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
