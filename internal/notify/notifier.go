// Package notify defines the notification interface and implementations
// for deal alert delivery.
package notify

import (
	"context"
	"fmt"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

// AlertPayload contains the data needed to send a deal alert notification.
type AlertPayload struct {
	EvaluationID string
	Title        string
	ListingURL   string
	Rating       domain.DealRatingKind
	Comment      string
	ListingPrice string
	FairValue    string
	Range        string
	Mileage      string
	Location     string
	Flags        []domain.Flag
}

// Notifier defines the interface for sending deal alert notifications.
type Notifier interface {
	SendAlert(ctx context.Context, alert *AlertPayload) error
}

// NewAlertPayload renders an evaluation into an alert.
func NewAlertPayload(e *domain.Evaluation) *AlertPayload {
	v := e.Vehicle
	p := &AlertPayload{
		EvaluationID: e.ID,
		Title:        vehicleTitle(v),
		ListingURL:   v.URL,
		Rating:       e.DealRating.Rating,
		Comment:      e.DealRating.Comment,
		ListingPrice: "n/a",
		FairValue:    valuation.Dollars(float64(e.Valuation.ValuationPrice)),
		Mileage:      "n/a",
		Location:     v.Zip,
		Flags:        e.Flags,
	}
	if v.Price != nil {
		p.ListingPrice = valuation.Dollars(float64(*v.Price))
	}
	if v.Mileage != nil {
		p.Mileage = valuation.Thousands(*v.Mileage) + " mi"
	}
	if r := e.Valuation.Range; r != nil {
		p.Range = fmt.Sprintf("%s - %s",
			valuation.Dollars(float64(r.Low)), valuation.Dollars(float64(r.High)))
	}
	if p.Location == "" {
		p.Location = v.RegionName
	}
	return p
}

func vehicleTitle(v domain.VehicleRecord) string {
	title := v.Maker
	if v.Model != "" {
		title += " " + v.Model
	}
	if v.Year != nil {
		title = fmt.Sprintf("%d %s", *v.Year, title)
	}
	if title == "" {
		return "Unknown vehicle"
	}
	return title
}
