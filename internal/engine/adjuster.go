package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/donaldgifford/vehicle-deal-checker/internal/metrics"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/extract"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/valuation"
)

// Adjuster turns a baseline price into a used-vehicle fair value.
type Adjuster interface {
	Adjust(ctx context.Context, in valuation.AdjustInput) (domain.AdjustmentResult, error)
	Name() string
}

// LocalAdjuster applies the deterministic adjustment formula.
type LocalAdjuster struct {
	cfg valuation.AdjustmentConfig
}

// NewLocalAdjuster creates a LocalAdjuster with cfg.
func NewLocalAdjuster(cfg valuation.AdjustmentConfig) *LocalAdjuster {
	return &LocalAdjuster{cfg: cfg}
}

// Name returns "local".
func (*LocalAdjuster) Name() string { return "local" }

// Adjust implements Adjuster.
func (a *LocalAdjuster) Adjust(
	_ context.Context,
	in valuation.AdjustInput,
) (domain.AdjustmentResult, error) {
	return valuation.Adjust(in, a.cfg)
}

// Fallback reasons recorded by RemoteAdjuster.
const (
	fallbackError    = "error"
	fallbackDecode   = "decode"
	fallbackMismatch = "mismatch"
)

// RemoteAdjuster asks an LLM to run the adjustment formula. The answer is
// only accepted when it equals the local result; any failure or
// disagreement returns the local result instead.
type RemoteAdjuster struct {
	backend extract.LLMBackend
	local   *LocalAdjuster
	cfg     valuation.AdjustmentConfig
	log     *slog.Logger
}

// RemoteAdjusterOption configures the RemoteAdjuster.
type RemoteAdjusterOption func(*RemoteAdjuster)

// WithRemoteLogger sets the logger.
func WithRemoteLogger(l *slog.Logger) RemoteAdjusterOption {
	return func(a *RemoteAdjuster) {
		a.log = l
	}
}

// NewRemoteAdjuster creates a RemoteAdjuster that checks backend against the
// local formula with cfg.
func NewRemoteAdjuster(
	backend extract.LLMBackend,
	cfg valuation.AdjustmentConfig,
	opts ...RemoteAdjusterOption,
) *RemoteAdjuster {
	a := &RemoteAdjuster{
		backend: backend,
		local:   NewLocalAdjuster(cfg),
		cfg:     cfg,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns "remote".
func (*RemoteAdjuster) Name() string { return "remote" }

// Adjust implements Adjuster. Errors come only from the local formula.
func (a *RemoteAdjuster) Adjust(
	ctx context.Context,
	in valuation.AdjustInput,
) (domain.AdjustmentResult, error) {
	local, err := a.local.Adjust(ctx, in)
	if err != nil {
		return domain.AdjustmentResult{}, err
	}

	remote, reason, err := a.askRemote(ctx, in)
	if err != nil {
		a.fallback(reason, err)
		return local, nil
	}

	if remote != local {
		a.fallback(fallbackMismatch, fmt.Errorf("remote fair %d, local fair %d", remote.Fair, local.Fair))
		return local, nil
	}

	return remote, nil
}

func (a *RemoteAdjuster) askRemote(
	ctx context.Context,
	in valuation.AdjustInput,
) (domain.AdjustmentResult, string, error) {
	prompt, err := extract.RenderAdjustPrompt(in, a.cfg)
	if err != nil {
		return domain.AdjustmentResult{}, fallbackError, err
	}

	resp, err := a.backend.Generate(ctx, extract.GenerateRequest{
		Prompt:      prompt,
		SystemMsg:   extract.AdjustSystemMsg,
		Format:      extract.FormatJSON,
		Temperature: 0,
		MaxTokens:   512,
	})
	if err != nil {
		return domain.AdjustmentResult{}, fallbackError, fmt.Errorf("calling LLM for adjustment: %w", err)
	}

	var out domain.AdjustmentResult
	if err := json.Unmarshal([]byte(extract.StripCodeFences(resp.Content)), &out); err != nil {
		return domain.AdjustmentResult{}, fallbackDecode, fmt.Errorf("parsing adjustment JSON: %w", err)
	}
	return out, "", nil
}

func (a *RemoteAdjuster) fallback(reason string, err error) {
	metrics.RemoteAdjustFallbacksTotal.WithLabelValues(reason).Inc()
	a.log.Warn("remote adjustment rejected, using local formula",
		"backend", a.backend.Name(),
		"reason", reason,
		"error", err,
	)
}
