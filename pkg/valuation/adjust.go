package valuation

import (
	"errors"
	"fmt"
	"math"
	"slices"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

const (
	// MaxRetentionAge is the last age with its own retention entry; older
	// vehicles use this entry.
	MaxRetentionAge = 20
	// MaxExpectationAge caps the age used to compute expected mileage.
	MaxExpectationAge = 15

	minCentsPerMile    = 0.02
	minAgeDampening    = 0.3
	ageDampeningPerYr  = 0.06
	rangeLowFactor     = 0.95
	rangeHighFactor    = 1.05
	unknownConditionFx = 1.0
)

// AdjustmentConfig holds the tunable parameters of the adjuster.
type AdjustmentConfig struct {
	ExpectedMilesPerYear int
	CPMByBodyType        map[domain.BodyType]float64
	RetentionByAge       map[int]float64
	MileageCapFraction   float64
	ConditionFactor      map[domain.Condition]float64
}

// DefaultAdjustmentConfig returns the canonical adjustment parameters.
func DefaultAdjustmentConfig() AdjustmentConfig {
	return AdjustmentConfig{
		ExpectedMilesPerYear: 12000,
		CPMByBodyType:        DefaultCPMByBodyType(),
		RetentionByAge:       DefaultRetentionByAge(),
		MileageCapFraction:   0.35,
		ConditionFactor:      DefaultConditionFactor(),
	}
}

// DefaultCPMByBodyType returns the dollars-per-mile rate for each body type.
func DefaultCPMByBodyType() map[domain.BodyType]float64 {
	return map[domain.BodyType]float64{
		domain.BodySedan:   0.08,
		domain.BodySUV:     0.10,
		domain.BodyPickup:  0.12,
		domain.BodyMinivan: 0.09,
		domain.BodyOther:   0.09,
	}
}

// DefaultRetentionByAge returns the fraction of the new price retained at
// each age from 0 to MaxRetentionAge.
func DefaultRetentionByAge() map[int]float64 {
	return map[int]float64{
		0: 1.00, 1: 0.80, 2: 0.70, 3: 0.62, 4: 0.56,
		5: 0.51, 6: 0.47, 7: 0.44, 8: 0.41, 9: 0.38,
		10: 0.34, 11: 0.31, 12: 0.28, 13: 0.26, 14: 0.24,
		15: 0.22, 16: 0.20, 17: 0.18, 18: 0.16, 19: 0.14,
		20: 0.13,
	}
}

// DefaultConditionFactor returns the multiplier applied per condition.
func DefaultConditionFactor() map[domain.Condition]float64 {
	return map[domain.Condition]float64{
		domain.ConditionExcellent: 1.02,
		domain.ConditionGood:      1.00,
		domain.ConditionFair:      0.97,
	}
}

// Validate checks that the configuration can be used by Adjust.
func (c *AdjustmentConfig) Validate() error {
	var errs []error

	if c.ExpectedMilesPerYear <= 0 {
		errs = append(errs, fmt.Errorf("expected_miles_per_year must be > 0 (got %d)", c.ExpectedMilesPerYear))
	}
	if c.MileageCapFraction <= 0 || c.MileageCapFraction > 1 {
		errs = append(errs, fmt.Errorf("mileage_cap_fraction must be in (0,1] (got %v)", c.MileageCapFraction))
	}
	if _, ok := c.CPMByBodyType[domain.BodyOther]; !ok {
		errs = append(errs, fmt.Errorf("cpm_by_body_type must include %q", domain.BodyOther))
	}
	for bt, v := range c.CPMByBodyType {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("cpm_by_body_type[%s] must be > 0 (got %v)", bt, v))
		}
	}
	for cond, v := range c.ConditionFactor {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("condition_factor[%s] must be > 0 (got %v)", cond, v))
		}
	}

	errs = append(errs, validateRetention(c.RetentionByAge)...)

	return errors.Join(errs...)
}

func validateRetention(r map[int]float64) []error {
	var errs []error
	prev := math.Inf(1)
	for age := 0; age <= MaxRetentionAge; age++ {
		v, ok := r[age]
		if !ok {
			errs = append(errs, fmt.Errorf("retention_by_age is missing age %d", age))
			continue
		}
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Errorf("retention_by_age[%d] must be in (0,1] (got %v)", age, v))
		}
		if v > prev {
			errs = append(errs, fmt.Errorf(
				"retention_by_age must not increase with age (age %d: %v > %v)", age, v, prev,
			))
		}
		prev = v
	}
	return errs
}

// Retention returns the retention fraction for age, clamping ages above
// MaxRetentionAge and below zero.
func (c *AdjustmentConfig) Retention(age int) float64 {
	return c.RetentionByAge[min(max(age, 0), MaxRetentionAge)]
}

// centsPerMile returns the nominal rate for a body type, falling back to the
// "other" entry.
func (c *AdjustmentConfig) centsPerMile(bt domain.BodyType) float64 {
	if v, ok := c.CPMByBodyType[bt]; ok {
		return v
	}
	return c.CPMByBodyType[domain.BodyOther]
}

func (c *AdjustmentConfig) conditionFactor(cond domain.Condition) float64 {
	if v, ok := c.ConditionFactor[cond]; ok {
		return v
	}
	return unknownConditionFx
}

// AdjustInput is everything the adjuster needs about one vehicle.
type AdjustInput struct {
	BasePrice   int
	Year        int
	Mileage     int
	BodyType    domain.BodyType
	Condition   domain.Condition
	CurrentYear int
}

// Adjust converts a new-vehicle base price into a used-vehicle fair value.
//
// Age picks a retention fraction. Mileage above or below the age-based
// expectation moves the price by an age-dampened per-mile rate, capped at a
// fraction of the retained value. The condition factor is applied last.
// The result depends only on in and cfg.
func Adjust(in AdjustInput, cfg AdjustmentConfig) (domain.AdjustmentResult, error) {
	if in.BasePrice <= 0 {
		return domain.AdjustmentResult{}, fmt.Errorf("base price %d: %w", in.BasePrice, domain.ErrInvalidInput)
	}
	if in.Year < 0 {
		return domain.AdjustmentResult{}, fmt.Errorf("year %d: %w", in.Year, domain.ErrInvalidInput)
	}
	if in.Mileage < 0 {
		return domain.AdjustmentResult{}, fmt.Errorf("mileage %d: %w", in.Mileage, domain.ErrInvalidInput)
	}

	// Explicit float64 conversions round every product on its own so the
	// compiler cannot fuse them; results are identical on every platform.
	age := max(0, in.CurrentYear-in.Year)
	retention := cfg.Retention(age)
	if retention <= 0 {
		return domain.AdjustmentResult{}, fmt.Errorf("no retention for age %d: %w", age, domain.ErrInvalidInput)
	}
	usedBase := float64(float64(in.BasePrice) * retention)

	expectedMiles := min(age, MaxExpectationAge) * cfg.ExpectedMilesPerYear
	deltaMiles := in.Mileage - expectedMiles

	dampening := max(minAgeDampening, 1-float64(ageDampeningPerYr*float64(age)))
	cppmAge := max(minCentsPerMile, float64(cfg.centsPerMile(in.BodyType)*dampening))
	rawAdj := float64(-cppmAge * float64(deltaMiles))

	capAmt := float64(cfg.MileageCapFraction * usedBase)
	mileageAdj := max(-capAmt, min(rawAdj, capAmt))

	fair := float64(max(0, usedBase+mileageAdj) * cfg.conditionFactor(in.Condition))
	low := float64(fair * rangeLowFactor)
	high := float64(fair * rangeHighFactor)

	return domain.AdjustmentResult{
		Fair:       roundInt(fair),
		Low:        roundInt(low),
		High:       roundInt(high),
		Age:        age,
		Retention:  retention,
		UsedBase:   roundInt(usedBase),
		DeltaMiles: deltaMiles,
		MileageAdj: roundInt(mileageAdj),
	}, nil
}

// roundInt rounds half to even, matching the rounding used by the baseline
// matcher.
func roundInt(v float64) int {
	return int(math.RoundToEven(v))
}

// RetentionCurve returns the retention fractions for ages 0..MaxRetentionAge
// in order.
func (c *AdjustmentConfig) RetentionCurve() []float64 {
	curve := make([]float64, 0, MaxRetentionAge+1)
	for age := 0; age <= MaxRetentionAge; age++ {
		curve = append(curve, c.RetentionByAge[age])
	}
	return curve
}

// BodyTypes returns the configured body types in sorted order.
func (c *AdjustmentConfig) BodyTypes() []domain.BodyType {
	types := make([]domain.BodyType, 0, len(c.CPMByBodyType))
	for bt := range c.CPMByBodyType {
		types = append(types, bt)
	}
	slices.Sort(types)
	return types
}
