package valuation

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// Rating thresholds, in percent below valuation.
const (
	ExcellentThresholdPct = 10.0
	GoodThresholdPct      = 3.0
	FairThresholdPct      = -5.0
)

// NoValuationComment is returned with an N/A rating.
const NoValuationComment = "Could not determine valuation due to missing price data."

var printer = message.NewPrinter(language.English)

// Classify rates a listing price against a valuation. It never fails: a
// non-finite input or a zero valuation yields N/A.
func Classify(listingPrice, valuationPrice float64) domain.DealRating {
	if !finite(listingPrice) || !finite(valuationPrice) || valuationPrice == 0 {
		return domain.DealRating{Rating: domain.RatingNA, Comment: NoValuationComment}
	}

	diff := valuationPrice - listingPrice
	pct := diff / valuationPrice * 100

	var rating domain.DealRatingKind
	switch {
	case pct > ExcellentThresholdPct:
		rating = domain.RatingExcellent
	case pct > GoodThresholdPct:
		rating = domain.RatingGood
	case pct > FairThresholdPct:
		rating = domain.RatingFair
	default:
		rating = domain.RatingOverpriced
	}

	if rating == domain.RatingFair {
		return domain.DealRating{
			Rating: rating,
			Comment: printer.Sprintf(
				"This car's price is close to our estimated market value of %s.", Dollars(valuationPrice),
			),
		}
	}

	direction := "above"
	if diff > 0 {
		direction = "below"
	}

	return domain.DealRating{
		Rating: rating,
		Comment: printer.Sprintf(
			"This car is listed %s (≈%s%%) %s our estimated market value of %s.",
			Dollars(math.Abs(diff)), strconv.FormatFloat(math.Abs(pct), 'f', 1, 64), direction, Dollars(valuationPrice),
		),
	}
}

// ClassifyPtr is Classify for a listing price that may be absent.
func ClassifyPtr(listingPrice *int, valuationPrice int) domain.DealRating {
	if listingPrice == nil {
		return domain.DealRating{Rating: domain.RatingNA, Comment: NoValuationComment}
	}
	return Classify(float64(*listingPrice), float64(valuationPrice))
}

// Dollars renders v as a thousands-separated dollar amount. Whole amounts
// carry no decimals.
func Dollars(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
		return printer.Sprintf("$%d", int64(v))
	}
	return printer.Sprintf("$%.2f", v)
}

// Thousands renders n with thousands separators.
func Thousands(n int) string {
	return printer.Sprintf("%d", n)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
