package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

func TestAnalyzeFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		vin       string
		wantFlags int
	}{
		{"missing vin", "", 1},
		{"whitespace vin", "   ", 1},
		{"short vin", "1HGCM8263", 1},
		{"long vin", "1HGCM82633A0043520", 1},
		{"valid vin", "1HGCM82633A004352", 0},
		{"valid vin with padding", "  1HGCM82633A004352\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flags := AnalyzeFlags(domain.VehicleRecord{Maker: "Honda", VIN: tt.vin})
			require.NotNil(t, flags)
			require.Len(t, flags, tt.wantFlags)

			if tt.wantFlags == 1 {
				assert.Equal(t, FlagVINMissing, flags[0].Code)
				assert.Equal(t, LevelRed, flags[0].Level)
				assert.Equal(t, "Red flag", flags[0].Label)
				assert.Contains(t, flags[0].Message, "Ask the seller for a VIN photo")
			}
		})
	}
}

func TestAnalyzeFlagsWith_CustomRules(t *testing.T) {
	t.Parallel()

	highMileage := func(rec domain.VehicleRecord) (domain.Flag, bool) {
		if rec.Mileage == nil || *rec.Mileage < 200000 {
			return domain.Flag{}, false
		}
		return domain.Flag{Code: "HIGH_MILEAGE", Level: "yellow"}, true
	}

	miles := 250000
	rec := domain.VehicleRecord{Maker: "Ford", Mileage: &miles}

	rules := append([]FlagRule{}, DefaultFlagRules...)
	rules = append(rules, highMileage)

	flags := AnalyzeFlagsWith(rec, rules)
	require.Len(t, flags, 2)
	assert.Equal(t, FlagVINMissing, flags[0].Code)
	assert.Equal(t, "HIGH_MILEAGE", flags[1].Code)
}
