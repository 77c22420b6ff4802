package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/vehicle-deal-checker/internal/provider"
)

// QuotaHandler reports salePrice API quota usage.
type QuotaHandler struct {
	rl *provider.RateLimiter
}

// NewQuotaHandler creates a QuotaHandler. rl may be nil when the provider
// runs unthrottled.
func NewQuotaHandler(rl *provider.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaBody is a snapshot of the salePrice daily quota.
type QuotaBody struct {
	DailyLimit int64      `json:"daily_limit"        example:"1000"                 doc:"Daily salePrice call limit, 0 when unlimited"`
	DailyUsed  int64      `json:"daily_used"         example:"42"                   doc:"Calls made in the current 24-hour window"`
	Remaining  int64      `json:"remaining"          example:"958"                  doc:"Calls left in the window, -1 when unlimited"`
	Exhausted  bool       `json:"exhausted"          example:"false"                doc:"True when baseline lookups fail until the window resets"`
	ResetAt    *time.Time `json:"reset_at,omitempty" example:"2026-10-20T14:30:00Z" doc:"When the current window expires"`
}

// QuotaOutput wraps QuotaBody for Huma.
type QuotaOutput struct {
	Body QuotaBody
}

func newQuotaBody(s provider.QuotaStatus) QuotaBody {
	return QuotaBody{
		DailyLimit: s.Limit,
		DailyUsed:  s.Used,
		Remaining:  s.Remaining,
		Exhausted:  s.Limit > 0 && s.Remaining == 0,
		ResetAt:    &s.ResetAt,
	}
}

// GetQuota returns the current quota snapshot.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	if h.rl == nil {
		return &QuotaOutput{Body: QuotaBody{Remaining: -1}}, nil
	}
	return &QuotaOutput{Body: newQuotaBody(h.rl.Status())}, nil
}

// RegisterQuotaRoutes registers GET /api/v1/quota.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get salePrice quota",
		Description: "Daily salePrice call usage, remaining calls and the window reset time. " +
			"Cached baselines do not count against the quota.",
		Tags: []string{"provider"},
	}, h.GetQuota)
}
