// Package mocks provides testify mocks for the provider interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockBaselineProvider is a mock of provider.BaselineProvider.
type MockBaselineProvider struct {
	mock.Mock
}

// NewMockBaselineProvider creates a MockBaselineProvider that asserts its
// expectations when the test ends.
func NewMockBaselineProvider(t testingT) *MockBaselineProvider {
	m := &MockBaselineProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockBaselineProviderExpecter builds typed expectations.
type MockBaselineProviderExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the typed expectation builder.
func (m *MockBaselineProvider) EXPECT() *MockBaselineProviderExpecter {
	return &MockBaselineProviderExpecter{mock: &m.Mock}
}

// FetchCandidates implements provider.BaselineProvider.
func (m *MockBaselineProvider) FetchCandidates(
	ctx context.Context,
	brand, region string,
) ([]domain.BaselineCandidate, error) {
	ret := m.Called(ctx, brand, region)
	var out []domain.BaselineCandidate
	if v := ret.Get(0); v != nil {
		out = v.([]domain.BaselineCandidate)
	}
	return out, ret.Error(1)
}

// MockBaselineProviderFetchCall is a typed FetchCandidates expectation.
type MockBaselineProviderFetchCall struct {
	*mock.Call
}

// FetchCandidates expects a FetchCandidates call.
func (e *MockBaselineProviderExpecter) FetchCandidates(
	ctx, brand, region any,
) *MockBaselineProviderFetchCall {
	return &MockBaselineProviderFetchCall{Call: e.mock.On("FetchCandidates", ctx, brand, region)}
}

// Return sets the values FetchCandidates returns.
func (c *MockBaselineProviderFetchCall) Return(
	candidates []domain.BaselineCandidate,
	err error,
) *MockBaselineProviderFetchCall {
	c.Call.Return(candidates, err)
	return c
}
