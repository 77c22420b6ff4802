// Package mocks provides testify mocks for the store interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/vehicle-deal-checker/internal/store"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockStore is a mock of store.Store.
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

// NewMockStore creates a MockStore that asserts its expectations when the
// test ends.
func NewMockStore(t testingT) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockStoreExpecter builds typed expectations.
type MockStoreExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the typed expectation builder.
func (m *MockStore) EXPECT() *MockStoreExpecter {
	return &MockStoreExpecter{mock: &m.Mock}
}

// SaveEvaluation implements store.Store.
func (m *MockStore) SaveEvaluation(ctx context.Context, e *domain.Evaluation) error {
	return m.Called(ctx, e).Error(0)
}

// GetEvaluation implements store.Store.
func (m *MockStore) GetEvaluation(ctx context.Context, id string) (*domain.Evaluation, error) {
	ret := m.Called(ctx, id)
	var e *domain.Evaluation
	if v := ret.Get(0); v != nil {
		e = v.(*domain.Evaluation)
	}
	return e, ret.Error(1)
}

// ListEvaluations implements store.Store.
func (m *MockStore) ListEvaluations(
	ctx context.Context,
	q *store.EvaluationQuery,
) ([]domain.Evaluation, int, error) {
	ret := m.Called(ctx, q)
	var evals []domain.Evaluation
	if v := ret.Get(0); v != nil {
		evals = v.([]domain.Evaluation)
	}
	return evals, ret.Int(1), ret.Error(2)
}

// PruneEvaluations implements store.Store.
func (m *MockStore) PruneEvaluations(ctx context.Context, cutoff time.Time) (int64, error) {
	ret := m.Called(ctx, cutoff)
	return ret.Get(0).(int64), ret.Error(1)
}

// Migrate implements store.Store.
func (m *MockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Ping implements store.Store.
func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockStoreSaveCall is a typed SaveEvaluation expectation.
type MockStoreSaveCall struct{ *mock.Call }

// SaveEvaluation expects a SaveEvaluation call.
func (e *MockStoreExpecter) SaveEvaluation(ctx, eval any) *MockStoreSaveCall {
	return &MockStoreSaveCall{Call: e.mock.On("SaveEvaluation", ctx, eval)}
}

// Return sets the error SaveEvaluation returns.
func (c *MockStoreSaveCall) Return(err error) *MockStoreSaveCall {
	c.Call.Return(err)
	return c
}

// Run sets a function called with the saved evaluation.
func (c *MockStoreSaveCall) Run(fn func(ctx context.Context, e *domain.Evaluation)) *MockStoreSaveCall {
	c.Call.Run(func(args mock.Arguments) {
		fn(args.Get(0).(context.Context), args.Get(1).(*domain.Evaluation))
	})
	return c
}

// MockStoreGetCall is a typed GetEvaluation expectation.
type MockStoreGetCall struct{ *mock.Call }

// GetEvaluation expects a GetEvaluation call.
func (e *MockStoreExpecter) GetEvaluation(ctx, id any) *MockStoreGetCall {
	return &MockStoreGetCall{Call: e.mock.On("GetEvaluation", ctx, id)}
}

// Return sets the values GetEvaluation returns.
func (c *MockStoreGetCall) Return(eval *domain.Evaluation, err error) *MockStoreGetCall {
	c.Call.Return(eval, err)
	return c
}

// MockStoreListCall is a typed ListEvaluations expectation.
type MockStoreListCall struct{ *mock.Call }

// ListEvaluations expects a ListEvaluations call.
func (e *MockStoreExpecter) ListEvaluations(ctx, q any) *MockStoreListCall {
	return &MockStoreListCall{Call: e.mock.On("ListEvaluations", ctx, q)}
}

// Return sets the values ListEvaluations returns.
func (c *MockStoreListCall) Return(evals []domain.Evaluation, total int, err error) *MockStoreListCall {
	c.Call.Return(evals, total, err)
	return c
}

// MockStorePruneCall is a typed PruneEvaluations expectation.
type MockStorePruneCall struct{ *mock.Call }

// PruneEvaluations expects a PruneEvaluations call.
func (e *MockStoreExpecter) PruneEvaluations(ctx, cutoff any) *MockStorePruneCall {
	return &MockStorePruneCall{Call: e.mock.On("PruneEvaluations", ctx, cutoff)}
}

// Return sets the values PruneEvaluations returns.
func (c *MockStorePruneCall) Return(n int64, err error) *MockStorePruneCall {
	c.Call.Return(n, err)
	return c
}

// MockStoreErrCall is a typed expectation for methods returning only an error.
type MockStoreErrCall struct{ *mock.Call }

// Return sets the error returned.
func (c *MockStoreErrCall) Return(err error) *MockStoreErrCall {
	c.Call.Return(err)
	return c
}

// Migrate expects a Migrate call.
func (e *MockStoreExpecter) Migrate(ctx any) *MockStoreErrCall {
	return &MockStoreErrCall{Call: e.mock.On("Migrate", ctx)}
}

// Ping expects a Ping call.
func (e *MockStoreExpecter) Ping(ctx any) *MockStoreErrCall {
	return &MockStoreErrCall{Call: e.mock.On("Ping", ctx)}
}
