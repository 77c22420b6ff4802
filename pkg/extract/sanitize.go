package extract

import (
	"fmt"
	"regexp"
	"strings"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

// RawListing is the JSON object an LLM returns for a listing, before
// sanitization. Numeric fields arrive as numbers or strings.
type RawListing struct {
	Maker      *string `json:"maker"`
	Model      *string `json:"model"`
	Year       any     `json:"year"`
	Price      any     `json:"price"`
	Mileage    any     `json:"mileage"`
	Zip        any     `json:"zip"`
	RegionName *string `json:"regionName"`
	BodyType   *string `json:"body_type"`
	Condition  *string `json:"condition"`
	VIN        *string `json:"vin"`
}

var (
	zipPattern      = regexp.MustCompile(`\b(\d{5})\b`)
	vinExactPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	vinFindPattern  = regexp.MustCompile(`[A-HJ-NPR-Z0-9]{17}`)
)

// minivanModels are model names that are minivans whatever the listing says.
var minivanModels = []string{
	"odyssey", "sienna", "caravan", "grand caravan", "pacifica", "sedona",
	"quest", "uplander", "terraza", "freestar", "windstar", "mpv", "mazda5",
	"voyager", "carnival", "transit connect",
}

// Sanitize converts a raw LLM answer into a VehicleRecord. Nothing is
// invented: unparseable numbers, ZIPs, and VINs become absent. Body type and
// condition always get a coarse value.
func Sanitize(raw RawListing, url string) domain.VehicleRecord {
	model := trimPtr(raw.Model)

	return domain.VehicleRecord{
		Maker:      trimPtr(raw.Maker),
		Model:      model,
		Year:       valuation.CoerceIntPtr(raw.Year),
		Price:      valuation.CoerceIntPtr(raw.Price),
		Mileage:    valuation.CoerceIntPtr(raw.Mileage),
		Zip:        NormalizeZip(raw.Zip),
		RegionName: trimPtr(raw.RegionName),
		BodyType:   NormalizeBodyType(trimPtr(raw.BodyType), model),
		Condition:  NormalizeCondition(trimPtr(raw.Condition)),
		VIN:        NormalizeVIN(trimPtr(raw.VIN)),
		URL:        url,
	}
}

func trimPtr(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// NormalizeZip returns the first standalone 5-digit group in v, or "".
func NormalizeZip(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		if x < 0 || x >= 100000 || x != float64(int(x)) {
			return ""
		}
		// Numeric ZIPs lose leading zeros.
		s = fmt.Sprintf("%05d", int(x))
	default:
		return ""
	}

	m := zipPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return m[1]
}

// NormalizeVIN upper-cases v and returns it when it is a well-formed 17
// character VIN, or the first well-formed VIN embedded in it. Otherwise "".
func NormalizeVIN(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	if vinExactPattern.MatchString(v) {
		return v
	}
	return vinFindPattern.FindString(v)
}

// NormalizeBodyType coarsens a free-form body description. Known minivan
// model names win over the description.
func NormalizeBodyType(bodyType, model string) domain.BodyType {
	bt := strings.ToLower(bodyType)
	mn := strings.ToLower(model)

	if strings.Contains(bt, "minivan") || (strings.Contains(bt, "van") && strings.Contains(bt, "mini")) {
		return domain.BodyMinivan
	}
	for _, m := range minivanModels {
		if mn != "" && strings.Contains(mn, m) {
			return domain.BodyMinivan
		}
	}

	switch {
	case strings.Contains(bt, "suv"):
		return domain.BodySUV
	case strings.Contains(bt, "pickup"), strings.Contains(bt, "truck"):
		return domain.BodyPickup
	case strings.Contains(bt, "sedan"):
		return domain.BodySedan
	default:
		return domain.BodyOther
	}
}

// NormalizeCondition coarsens a free-form condition into excellent, good, or
// fair. Anything unrecognized, including an empty string, is good.
func NormalizeCondition(raw string) domain.Condition {
	c := strings.ToLower(raw)
	switch {
	case strings.Contains(c, "excellent"), strings.Contains(c, "like new"):
		return domain.ConditionExcellent
	case strings.Contains(c, "fair"), strings.Contains(c, "needs"), strings.Contains(c, "project"):
		return domain.ConditionFair
	default:
		return domain.ConditionGood
	}
}
