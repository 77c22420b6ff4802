package extract

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

// ExtractSystemMsg is sent as the system message for listing extraction.
const ExtractSystemMsg = "You are an information extractor for used-vehicle listings. " +
	"Return STRICT JSON. Do not add commentary or code fences."

// AdjustSystemMsg is sent as the system message for remote adjustment.
const AdjustSystemMsg = "You are a calculator. Use ONLY the formula and parameters given. " +
	"Return strict JSON only."

const extractTmpl = `Work ONLY with the provided HTML/text of a used car listing.

Extract:
- maker (string, brand): e.g., "Toyota"
- model (string): e.g., "Camry"
- year (integer, 4-digit)
- price (integer USD ask; remove $ and commas)
- mileage (integer in miles; remove commas; if km is shown, divide by 1.609 and round)
- zip (5-digit ZIP as string; if several, choose the one tied to the listing)
- regionName (string enum if explicitly shown like "REGION_STATE_AZ"; else null)
- body_type (one of: "sedan","suv","pickup","minivan","other"; 'truck' is pickup; coupe/hatchback are other unless clearly sedan)
- condition (one of: "excellent","good","fair"; 'like new'/'excellent' is excellent, 'good'/'very good' is good, 'fair'/'needs work' is fair; if absent use good)
- vin (17-char string if present, else null)

Rules:
- Do NOT invent values. If a field is absent, return null.
- Normalize numbers: remove $ and commas; round to nearest integer.
- Prefer explicit numeric fields found near "odometer" or "mileage".
- Prefer the first plausible 17-char VIN (A-H, J-N, P, R-Z and digits; no I, O, Q).

<LISTING>
{{.Content}}
</LISTING>

Return ONLY JSON like:
{"maker": "...", "model": "...", "year": 2018, "price": 15499, "mileage": 73421, "zip": "85281", "regionName": null, "body_type": "sedan", "condition": "good", "vin": null}`

const adjustTmpl = `Inputs:
- new_model_price: {{.BasePrice}}
- year: {{.Year}}
- mileage: {{.Mileage}}
- body_type: "{{.BodyType}}"
- condition: "{{.Condition}}"
- current_year: {{.CurrentYear}}

Fixed params:
- expected_miles_per_year = {{.ExpectedMilesPerYear}}
- base_cents_per_mile = {{.CPM}}
- retention_map = {{.Retention}}
- condition_factor = {{.ConditionFactor}}
- mileage_cap_fraction = {{.CapFraction}}

Steps:
1) age = max(0, current_year - year)
2) r = retention_map[min(age, {{.MaxAge}})]
3) used_base = new_model_price * r
4) expected_miles = min(age, {{.MaxExpectationAge}}) * expected_miles_per_year
5) delta_miles = mileage - expected_miles
6) cppm = base_cents_per_mile.get(body_type, base_cents_per_mile["other"])
7) cppm_age = max(0.02, cppm * max(0.3, 1 - 0.06*age))
8) raw_mileage_adj = - cppm_age * delta_miles
9) cap = mileage_cap_fraction * used_base
10) mileage_adj = max(-cap, min(raw_mileage_adj, cap))
11) fair = max(0, used_base + mileage_adj) * condition_factor.get(condition, 1.0)
12) low = fair * 0.95; high = fair * 1.05
Round integers half to even.

Return strict JSON:
{"fair": <int>, "low": <int>, "high": <int>, "age": <int>, "retention": <float>, "used_base": <int>, "delta_miles": <int>, "mileage_adj": <int>}`

var (
	extractTemplate = template.Must(template.New("extract").Parse(extractTmpl))
	adjustTemplate  = template.Must(template.New("adjust").Parse(adjustTmpl))
)

// MaxPromptContent caps how much listing content is placed in the prompt.
const MaxPromptContent = 120_000

// RenderExtractPrompt renders the listing extraction prompt. Content longer
// than MaxPromptContent is truncated.
func RenderExtractPrompt(content string) (string, error) {
	if len(content) > MaxPromptContent {
		content = content[:MaxPromptContent]
	}

	var buf bytes.Buffer
	if err := extractTemplate.Execute(&buf, struct{ Content string }{content}); err != nil {
		return "", fmt.Errorf("rendering extract prompt: %w", err)
	}
	return buf.String(), nil
}

type adjustPromptData struct {
	valuation.AdjustInput
	ExpectedMilesPerYear int
	CPM                  string
	Retention            string
	ConditionFactor      string
	CapFraction          float64
	MaxAge               int
	MaxExpectationAge    int
}

// RenderAdjustPrompt renders a calculator prompt carrying the same parameters
// the local adjuster uses, so a faithful model reproduces its output.
func RenderAdjustPrompt(in valuation.AdjustInput, cfg valuation.AdjustmentConfig) (string, error) {
	data := adjustPromptData{
		AdjustInput:          in,
		ExpectedMilesPerYear: cfg.ExpectedMilesPerYear,
		CPM:                  formatCPM(cfg),
		Retention:            formatRetention(cfg),
		ConditionFactor:      formatConditionFactor(cfg),
		CapFraction:          cfg.MileageCapFraction,
		MaxAge:               valuation.MaxRetentionAge,
		MaxExpectationAge:    valuation.MaxExpectationAge,
	}

	var buf bytes.Buffer
	if err := adjustTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering adjust prompt: %w", err)
	}
	return buf.String(), nil
}

func formatCPM(cfg valuation.AdjustmentConfig) string {
	parts := make([]string, 0, len(cfg.CPMByBodyType))
	for _, bt := range cfg.BodyTypes() {
		parts = append(parts, fmt.Sprintf("%q:%g", string(bt), cfg.CPMByBodyType[bt]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatRetention(cfg valuation.AdjustmentConfig) string {
	curve := cfg.RetentionCurve()
	parts := make([]string, 0, len(curve))
	for age, r := range curve {
		parts = append(parts, fmt.Sprintf("%d:%.2f", age, r))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatConditionFactor(cfg valuation.AdjustmentConfig) string {
	order := []domain.Condition{domain.ConditionExcellent, domain.ConditionGood, domain.ConditionFair}
	parts := make([]string, 0, len(order))
	for _, c := range order {
		if f, ok := cfg.ConditionFactor[c]; ok {
			parts = append(parts, fmt.Sprintf("%q:%.2f", string(c), f))
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}
