// Package mocks provides testify mocks for the notify interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/vehicle-deal-checker/internal/notify"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockNotifier is a mock of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a MockNotifier that asserts its expectations when
// the test ends.
func NewMockNotifier(t testingT) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// MockNotifierExpecter builds typed expectations.
type MockNotifierExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the typed expectation builder.
func (m *MockNotifier) EXPECT() *MockNotifierExpecter {
	return &MockNotifierExpecter{mock: &m.Mock}
}

// SendAlert implements notify.Notifier.
func (m *MockNotifier) SendAlert(ctx context.Context, alert *notify.AlertPayload) error {
	return m.Called(ctx, alert).Error(0)
}

// MockNotifierSendAlertCall is a typed SendAlert expectation.
type MockNotifierSendAlertCall struct{ *mock.Call }

// SendAlert expects a SendAlert call.
func (e *MockNotifierExpecter) SendAlert(ctx, alert any) *MockNotifierSendAlertCall {
	return &MockNotifierSendAlertCall{Call: e.mock.On("SendAlert", ctx, alert)}
}

// Return sets the error SendAlert returns.
func (c *MockNotifierSendAlertCall) Return(err error) *MockNotifierSendAlertCall {
	c.Call.Return(err)
	return c
}

// Run sets a function called with the alert.
func (c *MockNotifierSendAlertCall) Run(
	fn func(ctx context.Context, alert *notify.AlertPayload),
) *MockNotifierSendAlertCall {
	c.Call.Run(func(args mock.Arguments) {
		fn(args.Get(0).(context.Context), args.Get(1).(*notify.AlertPayload))
	})
	return c
}
