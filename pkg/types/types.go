// Package domain defines the core business types for the vehicle deal checker.
package domain

import (
	"time"
)

// BodyType is the coarse body style used to pick a per-mile depreciation rate.
type BodyType string

// Body type constants.
const (
	BodySedan   BodyType = "sedan"
	BodySUV     BodyType = "suv"
	BodyPickup  BodyType = "pickup"
	BodyMinivan BodyType = "minivan"
	BodyOther   BodyType = "other"
)

// Condition represents the coarsened listing condition.
type Condition string

// Condition constants.
const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
)

// VehicleRecord is the structured description of a used-vehicle listing.
// Optional string fields are empty when absent; optional integers are nil.
// Nothing is filled in here that the listing did not state.
type VehicleRecord struct {
	Maker      string    `json:"maker"`
	Model      string    `json:"model,omitempty"`
	Year       *int      `json:"year"`
	Mileage    *int      `json:"mileage"`
	Price      *int      `json:"price"`
	Zip        string    `json:"zip,omitempty"`
	RegionName string    `json:"regionName,omitempty"`
	BodyType   BodyType  `json:"body_type,omitempty"`
	Condition  Condition `json:"condition,omitempty"`
	VIN        string    `json:"vin,omitempty"`
	URL        string    `json:"url,omitempty"`
}

// BaselineCandidate is one row of a brand/region price dataset.
type BaselineCandidate struct {
	Name             string  `json:"name"`
	StatisticalPrice float64 `json:"statistical_price"`
}

// BaselineResult is the new-vehicle reference price chosen for a vehicle.
type BaselineResult struct {
	BasePrice       int     `json:"base_price"`
	PickedModelName *string `json:"picked_model,omitempty"`
}

// AdjustmentResult holds the output of the age/mileage/condition adjustment.
type AdjustmentResult struct {
	Fair       int     `json:"fair"`
	Low        int     `json:"low"`
	High       int     `json:"high"`
	Age        int     `json:"age"`
	Retention  float64 `json:"retention"`
	UsedBase   int     `json:"used_base"`
	DeltaMiles int     `json:"delta_miles"`
	MileageAdj int     `json:"mileage_adj"`
}

// DealRatingKind is the categorical judgment of a listing price.
type DealRatingKind string

// Deal rating constants.
const (
	RatingExcellent  DealRatingKind = "Excellent Deal"
	RatingGood       DealRatingKind = "Good Deal"
	RatingFair       DealRatingKind = "Fair Price"
	RatingOverpriced DealRatingKind = "Overpriced"
	RatingNA         DealRatingKind = "N/A"
)

// DealRating pairs a rating with a human-readable explanation.
type DealRating struct {
	Rating  DealRatingKind `json:"rating"`
	Comment string         `json:"comment"`
}

// Flag is a risk signal raised for a listing.
type Flag struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

// PriceRange is the low/high band around a fair value.
type PriceRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// AdjustDetail exposes every intermediate value behind a valuation.
type AdjustDetail struct {
	Age         int     `json:"age"`
	Retention   float64 `json:"retention"`
	UsedBase    int     `json:"used_base"`
	DeltaMiles  int     `json:"delta_miles"`
	MileageAdj  int     `json:"mileage_adj"`
	BasePrice   int     `json:"base_price"`
	PickedModel *string `json:"picked_model"`
	RegionName  string  `json:"regionName,omitempty"`
	BrandName   string  `json:"brandName"`
}

// Valuation is the market value estimate for a vehicle.
type Valuation struct {
	ValuationPrice int           `json:"valuation_price"`
	Range          *PriceRange   `json:"range,omitempty"`
	AdjustDetail   *AdjustDetail `json:"adjust_detail,omitempty"`
	Source         string        `json:"source"`
}

// Evaluation is the full result for one listing: what was extracted, what it
// is worth, how good the deal is, and what looks risky.
type Evaluation struct {
	ID         string        `json:"id,omitempty"         db:"id"`
	Vehicle    VehicleRecord `json:"vehicle"              db:"vehicle"`
	Valuation  Valuation     `json:"valuation"            db:"valuation"`
	DealRating DealRating    `json:"deal_rating"          db:"deal_rating"`
	Flags      []Flag        `json:"flags"                db:"flags"`
	CreatedAt  time.Time     `json:"created_at,omitzero"  db:"created_at"`
}
