package rules

import "fmt"

// quotaWarnFraction of the salePrice daily limit triggers VdcProviderQuotaHigh.
const quotaWarnFraction = 0.8

// AlertRules returns the operational alerts for vehicle-deal-checker.
// dailyLimit is the configured salePrice quota.
func AlertRules(dailyLimit int) PrometheusRule {
	quotaWarn := int(float64(dailyLimit) * quotaWarnFraction)

	return newPrometheusRule("vdc-alerts",
		alert("VdcDown", `absent(up{job="vehicle-deal-checker"})`, "2m", SeverityCritical,
			"Vehicle Deal Checker is down",
			"The vehicle-deal-checker job has been absent for more than 2 minutes."),
		alert("VdcReadinessDown", `vdc_readyz_up == 0`, "2m", SeverityCritical,
			"Vehicle Deal Checker readiness check is failing",
			"The database or cache has been unreachable for more than 2 minutes."),
		alert("VdcHighErrorRate", `vdc:http_errors:rate5m / vdc:http_requests:rate5m > 0.05`, "5m", SeverityWarning,
			"High HTTP error rate on Vehicle Deal Checker",
			"More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes."),
		alert("VdcExtractionFailures", `vdc:extraction_failures:rate5m > 0.1`, "5m", SeverityWarning,
			"Listing extraction failure rate is elevated",
			"Extraction failures are occurring at more than 0.1/s for the last 5 minutes."),
		alert("VdcProviderErrors", `vdc:provider_errors:rate5m / vdc:provider_calls:rate5m > 0.2`, "10m", SeverityWarning,
			"salePrice API calls are failing",
			"More than 20% of salePrice calls have failed over the last 10 minutes."),
		alert("VdcProviderQuotaHigh", fmt.Sprintf(`vdc_provider_daily_usage > %d`, quotaWarn), "5m", SeverityWarning,
			"salePrice daily usage is above 80% of the quota",
			fmt.Sprintf("Daily salePrice usage has exceeded %d of %d calls.", quotaWarn, dailyLimit)),
		alert("VdcProviderLimitReached", `increase(vdc_provider_daily_limit_hits_total[5m]) > 0`, "0m", SeverityCritical,
			"salePrice daily limit has been reached",
			"The salePrice quota is exhausted. Valuations without a cached baseline fail until reset."),
		alert("VdcRemoteAdjustFallbacks", `sum(increase(vdc_remote_adjust_fallbacks_total[15m])) > 10`, "15m", SeverityInfo,
			"Remote price adjustment keeps falling back",
			"The LLM price adjuster is failing or disagreeing and the local formula is used instead."),
		alert("VdcNotificationFailures", `increase(vdc_notification_failures_total[5m]) > 0`, "1m", SeverityWarning,
			"Notification delivery failures detected",
			"One or more deal alerts (Discord webhooks) have failed to send."),
	)
}
