package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	ptestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vehicle-deal-checker/internal/metrics"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/extract"
	extractMocks "github.com/donaldgifford/vehicle-deal-checker/pkg/extract/mocks"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/logger"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

func adjustInput() valuation.AdjustInput {
	return valuation.AdjustInput{
		BasePrice:   25000,
		Year:        2018,
		Mileage:     60000,
		BodyType:    domain.BodySedan,
		Condition:   domain.ConditionGood,
		CurrentYear: testYear,
	}
}

func TestLocalAdjuster(t *testing.T) {
	t.Parallel()

	a := NewLocalAdjuster(valuation.DefaultAdjustmentConfig())
	assert.Equal(t, "local", a.Name())

	got, err := a.Adjust(context.Background(), adjustInput())
	require.NoError(t, err)
	assert.Equal(t, 11748, got.Fair)
	assert.Equal(t, 10250, got.UsedBase)
}

func TestRemoteAdjuster(t *testing.T) {
	t.Parallel()

	cfg := valuation.DefaultAdjustmentConfig()
	local, err := valuation.Adjust(adjustInput(), cfg)
	require.NoError(t, err)

	agreeing, err := json.Marshal(local)
	require.NoError(t, err)

	disagreeing := local
	disagreeing.Fair += 500
	disagreeingJSON, err := json.Marshal(disagreeing)
	require.NoError(t, err)

	tests := []struct {
		name       string
		content    string
		genErr     error
		wantReason string
	}{
		{name: "agreeing answer accepted", content: string(agreeing)},
		{name: "fenced agreeing answer accepted", content: "```json\n" + string(agreeing) + "\n```"},
		{name: "disagreement falls back", content: string(disagreeingJSON), wantReason: fallbackMismatch},
		{name: "backend error falls back", genErr: errors.New("503"), wantReason: fallbackError},
		{name: "non-JSON falls back", content: "fair is about 11k", wantReason: fallbackDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := extractMocks.NewMockLLMBackend(t)
			backend.EXPECT().
				Generate(mock.Anything, mock.MatchedBy(func(req extract.GenerateRequest) bool {
					return req.SystemMsg == extract.AdjustSystemMsg &&
						req.Format == extract.FormatJSON
				})).
				Return(extract.GenerateResponse{Content: tt.content}, tt.genErr).
				Once()

			a := NewRemoteAdjuster(backend, cfg, WithRemoteLogger(logger.Discard()))
			assert.Equal(t, "remote", a.Name())

			var before float64
			if tt.wantReason != "" {
				before = ptestutil.ToFloat64(metrics.RemoteAdjustFallbacksTotal.WithLabelValues(tt.wantReason))
			}

			got, err := a.Adjust(context.Background(), adjustInput())
			require.NoError(t, err)
			assert.Equal(t, local, got)

			if tt.wantReason != "" {
				after := ptestutil.ToFloat64(metrics.RemoteAdjustFallbacksTotal.WithLabelValues(tt.wantReason))
				assert.GreaterOrEqual(t, after, before+1)
			}
		})
	}
}

func TestRemoteAdjuster_LocalErrorSkipsBackend(t *testing.T) {
	t.Parallel()

	backend := extractMocks.NewMockLLMBackend(t)
	a := NewRemoteAdjuster(backend, valuation.DefaultAdjustmentConfig(), WithRemoteLogger(logger.Discard()))

	in := adjustInput()
	in.BasePrice = 0

	_, err := a.Adjust(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
