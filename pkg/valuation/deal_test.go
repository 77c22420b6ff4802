package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		listing     float64
		valuation   float64
		wantRating  domain.DealRatingKind
		wantComment string
	}{
		{
			name:        "overpriced reference case",
			listing:     20000,
			valuation:   15300,
			wantRating:  domain.RatingOverpriced,
			wantComment: "This car is listed $4,700 (≈30.7%) above our estimated market value of $15,300.",
		},
		{
			name:        "well under market",
			listing:     10000,
			valuation:   15300,
			wantRating:  domain.RatingExcellent,
			wantComment: "This car is listed $5,300 (≈34.6%) below our estimated market value of $15,300.",
		},
		{
			name:        "good deal",
			listing:     14000,
			valuation:   15300,
			wantRating:  domain.RatingGood,
			wantComment: "This car is listed $1,300 (≈8.5%) below our estimated market value of $15,300.",
		},
		{
			name:        "at market",
			listing:     15300,
			valuation:   15300,
			wantRating:  domain.RatingFair,
			wantComment: "This car's price is close to our estimated market value of $15,300.",
		},
		{
			name:        "fractional amounts keep cents",
			listing:     999.75,
			valuation:   2000,
			wantRating:  domain.RatingExcellent,
			wantComment: "This car is listed $1,000.25 (≈50.0%) below our estimated market value of $2,000.",
		},
		{
			name:        "percentage is not grouped",
			listing:     20000,
			valuation:   1000,
			wantRating:  domain.RatingOverpriced,
			wantComment: "This car is listed $19,000 (≈1900.0%) above our estimated market value of $1,000.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Classify(tt.listing, tt.valuation)
			assert.Equal(t, tt.wantRating, got.Rating)
			assert.Equal(t, tt.wantComment, got.Comment)
		})
	}
}

func TestClassify_Boundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		listing float64
		want    domain.DealRatingKind
	}{
		{8999, domain.RatingExcellent},
		{9000, domain.RatingGood}, // exactly 10%
		{9699, domain.RatingGood},
		{9700, domain.RatingFair}, // exactly 3%
		{10499, domain.RatingFair},
		{10500, domain.RatingOverpriced}, // exactly -5%
	}

	for _, tt := range tests {
		got := Classify(tt.listing, 10000)
		assert.Equal(t, tt.want, got.Rating, "listing=%v", tt.listing)
	}
}

func TestClassify_Partition(t *testing.T) {
	t.Parallel()

	buckets := map[domain.DealRatingKind]bool{
		domain.RatingExcellent:  true,
		domain.RatingGood:       true,
		domain.RatingFair:       true,
		domain.RatingOverpriced: true,
	}

	for listing := 0.0; listing <= 40000; listing += 250 {
		got := Classify(listing, 20000)
		assert.True(t, buckets[got.Rating], "listing=%v rating=%s", listing, got.Rating)
	}
}

func TestClassify_NotApplicable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		listing   float64
		valuation float64
	}{
		{"zero valuation", 10000, 0},
		{"NaN listing", math.NaN(), 10000},
		{"infinite valuation", 10000, math.Inf(1)},
		{"negative infinite listing", math.Inf(-1), 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Classify(tt.listing, tt.valuation)
			assert.Equal(t, domain.RatingNA, got.Rating)
			assert.Equal(t, NoValuationComment, got.Comment)
		})
	}
}

func TestClassifyPtr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.RatingNA, ClassifyPtr(nil, 15300).Rating)

	price := 20000
	assert.Equal(t, domain.RatingOverpriced, ClassifyPtr(&price, 15300).Rating)
}

func TestDollars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$0", Dollars(0))
	assert.Equal(t, "$950", Dollars(950))
	assert.Equal(t, "$1,234,567", Dollars(1234567))
	assert.Equal(t, "$12.25", Dollars(12.25))
}

func TestThousands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", Thousands(0))
	assert.Equal(t, "60,000", Thousands(60000))
	assert.Equal(t, "-1,500", Thousands(-1500))
}
