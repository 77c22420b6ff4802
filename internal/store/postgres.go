package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool    *pgxpool.Pool
	nowFunc func() time.Time
}

// PostgresOption configures the PostgresStore.
type PostgresOption func(*postgresOptions)

type postgresOptions struct {
	poolSize int32
	nowFunc  func() time.Time
}

// WithPoolSize sets the maximum number of pooled connections.
func WithPoolSize(n int) PostgresOption {
	return func(o *postgresOptions) {
		if n > 0 {
			o.poolSize = int32(n) //nolint:gosec // pool sizes are small
		}
	}
}

// WithNowFunc overrides the clock used to stamp new evaluations.
func WithNowFunc(f func() time.Time) PostgresOption {
	return func(o *postgresOptions) {
		o.nowFunc = f
	}
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(
	ctx context.Context,
	connString string,
	opts ...PostgresOption,
) (*PostgresStore, error) {
	o := postgresOptions{poolSize: defaultPoolSize, nowFunc: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.MaxConns = o.poolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool, nowFunc: o.nowFunc}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := RunMigrations(ctx, s.pool)
	return err
}

// SaveEvaluation implements Store.
func (s *PostgresStore) SaveEvaluation(ctx context.Context, e *domain.Evaluation) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.nowFunc().UTC().Truncate(time.Microsecond)
	}
	if e.Flags == nil {
		e.Flags = []domain.Flag{}
	}

	docs, err := marshalDocs(e)
	if err != nil {
		return err
	}

	args := pgx.NamedArgs{
		"id":              e.ID,
		"url":             e.Vehicle.URL,
		"maker":           e.Vehicle.Maker,
		"model":           e.Vehicle.Model,
		"year":            e.Vehicle.Year,
		"listing_price":   e.Vehicle.Price,
		"valuation_price": e.Valuation.ValuationPrice,
		"rating":          string(e.DealRating.Rating),
		"vehicle":         docs[0],
		"valuation":       docs[1],
		"deal_rating":     docs[2],
		"flags":           docs[3],
		"created_at":      e.CreatedAt,
	}

	if _, err := s.pool.Exec(ctx, queryInsertEvaluation, args); err != nil {
		return fmt.Errorf("inserting evaluation: %w", err)
	}
	return nil
}

// GetEvaluation implements Store.
func (s *PostgresStore) GetEvaluation(ctx context.Context, id string) (*domain.Evaluation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("evaluation %q: %w", id, ErrNotFound)
	}

	e, err := scanEvaluation(s.pool.QueryRow(ctx, queryGetEvaluation, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting evaluation: %w", err)
	}
	return e, nil
}

// ListEvaluations implements Store, returning one page and the total count.
func (s *PostgresStore) ListEvaluations(
	ctx context.Context,
	q *EvaluationQuery,
) ([]domain.Evaluation, int, error) {
	dataSQL, countSQL, args := q.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting evaluations: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying evaluations: %w", err)
	}
	defer rows.Close()

	evals := make([]domain.Evaluation, 0)
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning evaluation: %w", err)
		}
		evals = append(evals, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating evaluations: %w", err)
	}

	return evals, total, nil
}

// PruneEvaluations implements Store.
func (s *PostgresStore) PruneEvaluations(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, queryPruneEvaluations, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning evaluations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func marshalDocs(e *domain.Evaluation) ([4][]byte, error) {
	var docs [4][]byte
	for i, v := range []any{e.Vehicle, e.Valuation, e.DealRating, e.Flags} {
		b, err := json.Marshal(v)
		if err != nil {
			return docs, fmt.Errorf("encoding evaluation: %w", err)
		}
		docs[i] = b
	}
	return docs, nil
}

func scanEvaluation(row pgx.Row) (*domain.Evaluation, error) {
	var (
		e                                  domain.Evaluation
		vehicle, valuation, rating, flags []byte
	)
	if err := row.Scan(&e.ID, &vehicle, &valuation, &rating, &flags, &e.CreatedAt); err != nil {
		return nil, err
	}

	for _, d := range []struct {
		raw  []byte
		into any
	}{
		{vehicle, &e.Vehicle},
		{valuation, &e.Valuation},
		{rating, &e.DealRating},
		{flags, &e.Flags},
	} {
		if err := json.Unmarshal(d.raw, d.into); err != nil {
			return nil, fmt.Errorf("decoding evaluation %s: %w", e.ID, err)
		}
	}
	return &e, nil
}
