package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// ErrImplausible is returned when an extracted value is outside the range a
// real listing could contain.
var ErrImplausible = errors.New("implausible extracted value")

var validate = validator.New(validator.WithRequiredStructEnabled())

// recordRules mirrors the validated subset of a VehicleRecord.
type recordRules struct {
	Year      *int   `validate:"omitempty,gte=1886,lte=2100"`
	Mileage   *int   `validate:"omitempty,gte=0,lte=2000000"`
	Price     *int   `validate:"omitempty,gte=0,lte=10000000"`
	Zip       string `validate:"omitempty,len=5,numeric"`
	VIN       string `validate:"omitempty,len=17,alphanum,uppercase"`
	BodyType  string `validate:"omitempty,oneof=sedan suv pickup minivan other"`
	Condition string `validate:"omitempty,oneof=excellent good fair"`
}

func rulesFor(rec domain.VehicleRecord) recordRules {
	return recordRules{
		Year:      rec.Year,
		Mileage:   rec.Mileage,
		Price:     rec.Price,
		Zip:       rec.Zip,
		VIN:       rec.VIN,
		BodyType:  string(rec.BodyType),
		Condition: string(rec.Condition),
	}
}

// ValidateRecord checks that every present field of rec is plausible.
func ValidateRecord(rec domain.VehicleRecord) error {
	fields := invalidFields(rec)
	if len(fields) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrImplausible, strings.Join(fields, "; "))
}

// Scrub clears implausible fields from rec and reports which ones were
// cleared. Cleared optional fields become absent; body type and condition
// fall back to other and good.
func Scrub(rec domain.VehicleRecord) (domain.VehicleRecord, []string) {
	var verrs validator.ValidationErrors
	if err := validate.Struct(rulesFor(rec)); !errors.As(err, &verrs) {
		return rec, nil
	}

	dropped := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Year":
			rec.Year = nil
		case "Mileage":
			rec.Mileage = nil
		case "Price":
			rec.Price = nil
		case "Zip":
			rec.Zip = ""
		case "VIN":
			rec.VIN = ""
		case "BodyType":
			rec.BodyType = domain.BodyOther
		case "Condition":
			rec.Condition = domain.ConditionGood
		}
		dropped = append(dropped, fe.Field())
	}
	return rec, dropped
}

func invalidFields(rec domain.VehicleRecord) []string {
	var verrs validator.ValidationErrors
	if err := validate.Struct(rulesFor(rec)); !errors.As(err, &verrs) {
		return nil
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
