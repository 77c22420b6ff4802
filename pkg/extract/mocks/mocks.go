// Package mocks provides testify mocks for the extract interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/vehicle-deal-checker/pkg/extract"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockLLMBackend is a mock of extract.LLMBackend.
type MockLLMBackend struct {
	mock.Mock
}

// NewMockLLMBackend creates a MockLLMBackend that asserts its expectations
// when the test ends.
func NewMockLLMBackend(t testingT) *MockLLMBackend {
	m := &MockLLMBackend{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockLLMBackendExpecter builds typed expectations.
type MockLLMBackendExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the typed expectation builder.
func (m *MockLLMBackend) EXPECT() *MockLLMBackendExpecter {
	return &MockLLMBackendExpecter{mock: &m.Mock}
}

// Generate implements extract.LLMBackend.
func (m *MockLLMBackend) Generate(
	ctx context.Context,
	req extract.GenerateRequest,
) (extract.GenerateResponse, error) {
	ret := m.Called(ctx, req)
	if fn, ok := ret.Get(0).(func(context.Context, extract.GenerateRequest) (extract.GenerateResponse, error)); ok {
		return fn(ctx, req)
	}
	return ret.Get(0).(extract.GenerateResponse), ret.Error(1)
}

// Name implements extract.LLMBackend.
func (m *MockLLMBackend) Name() string {
	if !m.hasExpectation("Name") {
		return "mock"
	}
	return m.Called().String(0)
}

func (m *MockLLMBackend) hasExpectation(method string) bool {
	for _, c := range m.ExpectedCalls {
		if c.Method == method {
			return true
		}
	}
	return false
}

// MockLLMBackendGenerateCall is a typed Generate expectation.
type MockLLMBackendGenerateCall struct {
	*mock.Call
}

// Generate expects a Generate call.
func (e *MockLLMBackendExpecter) Generate(ctx, req any) *MockLLMBackendGenerateCall {
	return &MockLLMBackendGenerateCall{Call: e.mock.On("Generate", ctx, req)}
}

// Return sets the values Generate returns.
func (c *MockLLMBackendGenerateCall) Return(
	resp extract.GenerateResponse,
	err error,
) *MockLLMBackendGenerateCall {
	c.Call.Return(resp, err)
	return c
}

// Run sets a function called with the Generate arguments.
func (c *MockLLMBackendGenerateCall) Run(
	run func(ctx context.Context, req extract.GenerateRequest),
) *MockLLMBackendGenerateCall {
	c.Call.Run(func(args mock.Arguments) {
		run(args.Get(0).(context.Context), args.Get(1).(extract.GenerateRequest))
	})
	return c
}

// RunAndReturn makes Generate return whatever fn returns.
func (c *MockLLMBackendGenerateCall) RunAndReturn(
	fn func(context.Context, extract.GenerateRequest) (extract.GenerateResponse, error),
) *MockLLMBackendGenerateCall {
	c.Call.Return(fn, nil)
	return c
}

// MockExtractor is a mock of extract.Extractor.
type MockExtractor struct {
	mock.Mock
}

// NewMockExtractor creates a MockExtractor that asserts its expectations when
// the test ends.
func NewMockExtractor(t testingT) *MockExtractor {
	m := &MockExtractor{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockExtractorExpecter builds typed expectations.
type MockExtractorExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the typed expectation builder.
func (m *MockExtractor) EXPECT() *MockExtractorExpecter {
	return &MockExtractorExpecter{mock: &m.Mock}
}

// ExtractURL implements extract.Extractor.
func (m *MockExtractor) ExtractURL(ctx context.Context, url string) (domain.VehicleRecord, error) {
	ret := m.Called(ctx, url)
	return ret.Get(0).(domain.VehicleRecord), ret.Error(1)
}

// ExtractText implements extract.Extractor.
func (m *MockExtractor) ExtractText(
	ctx context.Context,
	content, url string,
) (domain.VehicleRecord, error) {
	ret := m.Called(ctx, content, url)
	return ret.Get(0).(domain.VehicleRecord), ret.Error(1)
}

// MockExtractorCall is a typed Extractor expectation.
type MockExtractorCall struct {
	*mock.Call
}

// Return sets the values the call returns.
func (c *MockExtractorCall) Return(rec domain.VehicleRecord, err error) *MockExtractorCall {
	c.Call.Return(rec, err)
	return c
}

// ExtractURL expects an ExtractURL call.
func (e *MockExtractorExpecter) ExtractURL(ctx, url any) *MockExtractorCall {
	return &MockExtractorCall{Call: e.mock.On("ExtractURL", ctx, url)}
}

// ExtractText expects an ExtractText call.
func (e *MockExtractorExpecter) ExtractText(ctx, content, url any) *MockExtractorCall {
	return &MockExtractorCall{Call: e.mock.On("ExtractText", ctx, content, url)}
}

// MockPageFetcher is a mock of extract.PageFetcher.
type MockPageFetcher struct {
	mock.Mock
}

// NewMockPageFetcher creates a MockPageFetcher that asserts its expectations
// when the test ends.
func NewMockPageFetcher(t testingT) *MockPageFetcher {
	m := &MockPageFetcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Fetch implements extract.PageFetcher.
func (m *MockPageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ret := m.Called(ctx, url)
	return ret.String(0), ret.Error(1)
}
