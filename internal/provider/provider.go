// Package provider fetches brand/region baseline prices from the CIS
// automotive salePrice API, abstracted behind interfaces for testability.
package provider

import (
	"context"

	"go.opentelemetry.io/otel"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

var tracer = otel.Tracer("github.com/donaldgifford/vehicle-deal-checker/internal/provider")

// BaselineProvider returns the per-model price rows for a brand, scoped to a
// region when one is given.
type BaselineProvider interface {
	FetchCandidates(ctx context.Context, brand, region string) ([]domain.BaselineCandidate, error)
}
