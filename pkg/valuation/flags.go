package valuation

import (
	"strings"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// Flag codes and levels.
const (
	FlagVINMissing = "VIN_MISSING"

	LevelRed = "red"
)

// VINLength is the length of a modern (1981+) VIN.
const VINLength = 17

// FlagRule inspects a record and returns a flag when it applies.
type FlagRule func(rec domain.VehicleRecord) (domain.Flag, bool)

// DefaultFlagRules are the rules AnalyzeFlags runs, in output order.
var DefaultFlagRules = []FlagRule{
	vinMissingRule,
}

// AnalyzeFlags runs the default rules against rec. The result is never nil.
func AnalyzeFlags(rec domain.VehicleRecord) []domain.Flag {
	return AnalyzeFlagsWith(rec, DefaultFlagRules)
}

// AnalyzeFlagsWith runs rules against rec in order.
func AnalyzeFlagsWith(rec domain.VehicleRecord, rules []FlagRule) []domain.Flag {
	flags := make([]domain.Flag, 0, len(rules))
	for _, rule := range rules {
		if f, ok := rule(rec); ok {
			flags = append(flags, f)
		}
	}
	return flags
}

func vinMissingRule(rec domain.VehicleRecord) (domain.Flag, bool) {
	if len(strings.TrimSpace(rec.VIN)) == VINLength {
		return domain.Flag{}, false
	}
	return domain.Flag{
		Code:  FlagVINMissing,
		Level: LevelRed,
		Label: "Red flag",
		Message: "VIN not shown in the listing. Ask the seller for a VIN photo " +
			"(windshield/driver-door sticker) before meeting.",
	}, true
}
