// Package valuation implements the pure pricing logic: baseline matching,
// age/mileage adjustment, deal classification, and risk flags.
package valuation

import (
	"fmt"
	"math"
	"slices"
	"strings"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// Match scores.
const (
	ScoreExact   = 5
	ScoreAffix   = 4
	ScoreContain = 3
	ScoreToken   = 2
	ScoreNone    = 0
)

// Normalize lower-cases s, turns hyphens and underscores into spaces, and
// collapses runs of whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Score rates how well candidate names the same model as target.
func Score(target, candidate string) int {
	t, c := Normalize(target), Normalize(candidate)
	if t == "" || c == "" {
		return ScoreNone
	}

	switch {
	case t == c:
		return ScoreExact
	case strings.HasPrefix(c, t), strings.HasSuffix(c, t),
		strings.HasPrefix(t, c), strings.HasSuffix(t, c):
		return ScoreAffix
	case strings.Contains(c, t), strings.Contains(t, c):
		return ScoreContain
	case sharesToken(t, c):
		return ScoreToken
	default:
		return ScoreNone
	}
}

func sharesToken(a, b string) bool {
	tokens := strings.Fields(a)
	for _, tok := range strings.Fields(b) {
		if slices.Contains(tokens, tok) {
			return true
		}
	}
	return false
}

// Match picks the baseline price for a brand. When modelHint is set, the
// candidate with the strictly highest positive score wins (first one on ties).
// Otherwise, or when nothing matches, the median of every priced candidate is
// used. region is informational; candidates are expected to be region-scoped
// already.
func Match(
	brand, region, modelHint string,
	candidates []domain.BaselineCandidate,
) (domain.BaselineResult, error) {
	if strings.TrimSpace(brand) == "" {
		return domain.BaselineResult{}, fmt.Errorf("brand is required: %w", domain.ErrConfig)
	}

	if best, ok := bestCandidate(modelHint, candidates); ok {
		name := best.Name
		return domain.BaselineResult{
			BasePrice:       int(math.RoundToEven(best.StatisticalPrice)),
			PickedModelName: &name,
		}, nil
	}

	prices := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		if c.StatisticalPrice > 0 {
			prices = append(prices, c.StatisticalPrice)
		}
	}

	mid, ok := Median(prices)
	if !ok {
		return domain.BaselineResult{}, fmt.Errorf(
			"no priced candidates for brand %q region %q: %w", brand, region, domain.ErrNoData,
		)
	}

	base := int(math.RoundToEven(mid))
	if base <= 0 {
		return domain.BaselineResult{}, fmt.Errorf(
			"baseline for brand %q rounds to %d: %w", brand, base, domain.ErrNoData,
		)
	}

	return domain.BaselineResult{BasePrice: base}, nil
}

// bestCandidate returns the best-scoring candidate for hint. A candidate
// without usable statistics never counts as a match.
func bestCandidate(
	hint string,
	candidates []domain.BaselineCandidate,
) (domain.BaselineCandidate, bool) {
	if strings.TrimSpace(hint) == "" {
		return domain.BaselineCandidate{}, false
	}

	bestScore := ScoreNone
	var best domain.BaselineCandidate
	for _, c := range candidates {
		if s := Score(hint, c.Name); s > bestScore {
			bestScore = s
			best = c
		}
	}

	if bestScore == ScoreNone || math.RoundToEven(best.StatisticalPrice) <= 0 {
		return domain.BaselineCandidate{}, false
	}
	return best, true
}

// Median returns the median of values, averaging the central pair for an
// even count. It reports false for an empty slice. values is not modified.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0, true
}
