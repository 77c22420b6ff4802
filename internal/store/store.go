// Package store defines the datastore abstraction for evaluation history.
// Business logic depends on the Store interface, never on concrete
// implementations, so it can be tested with mocks and no database.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// ErrNotFound is returned when an evaluation does not exist.
var ErrNotFound = errors.New("evaluation not found")

// EvaluationQuery defines optional filters for listing stored evaluations.
type EvaluationQuery struct {
	Maker   *string // case-insensitive
	Rating  *string
	Since   *time.Time
	Limit   int // default 50
	Offset  int
	OrderBy string // "created_at", "valuation_price", "listing_price"
}

// Store defines the evaluation history operations.
type Store interface {
	// SaveEvaluation stores e, assigning its ID and CreatedAt when unset.
	SaveEvaluation(ctx context.Context, e *domain.Evaluation) error
	GetEvaluation(ctx context.Context, id string) (*domain.Evaluation, error)
	ListEvaluations(ctx context.Context, q *EvaluationQuery) ([]domain.Evaluation, int, error)
	// PruneEvaluations deletes evaluations created before cutoff.
	PruneEvaluations(ctx context.Context, cutoff time.Time) (int64, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
