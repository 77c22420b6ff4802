package handlers_test

import (
	"github.com/donaldgifford/vehicle-deal-checker/internal/engine"
	providerMocks "github.com/donaldgifford/vehicle-deal-checker/internal/provider/mocks"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/logger"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

const testYear = 2026

func hondaCandidates() []domain.BaselineCandidate {
	return []domain.BaselineCandidate{
		{Name: "Accord", StatisticalPrice: 30000},
		{Name: "Civic", StatisticalPrice: 25000},
		{Name: "CR-V", StatisticalPrice: 32000},
	}
}

func newTestEngine(p *providerMocks.MockBaselineProvider, opts ...engine.EngineOption) *engine.Engine {
	base := []engine.EngineOption{
		engine.WithLogger(logger.Discard()),
		engine.WithCurrentYear(testYear),
	}
	return engine.NewEngine(p, append(base, opts...)...)
}

// civicBody is a 2018 Civic listing with loosely typed numbers, as a form
// or scraper would send it.
func civicBody() map[string]any {
	return map[string]any{
		"maker":      "Honda",
		"model":      "Civic EX",
		"year":       "2018",
		"mileage":    "60,000",
		"price":      "$10,000",
		"regionName": "REGION_STATE_AZ",
		"body_type":  "sedan",
		"condition":  "good",
	}
}
