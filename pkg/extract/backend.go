// Package extract turns used-vehicle listing pages into structured
// VehicleRecords using an LLM, abstracted behind interfaces for testability.
package extract

import (
	"context"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// FormatJSON is the format string for requesting JSON mode from LLM backends.
const FormatJSON = "json"

// GenerateRequest defines the input for an LLM generation call.
type GenerateRequest struct {
	Prompt      string
	SystemMsg   string
	Format      string // FormatJSON for JSON mode
	Temperature float64
	MaxTokens   int
}

// TokenUsage tracks LLM token consumption.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Content string
	Model   string
	Usage   TokenUsage
}

// LLMBackend defines the interface for LLM text generation.
type LLMBackend interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Name() string
}

// Extractor pulls a VehicleRecord out of a listing. Fields the listing does
// not state are left absent.
type Extractor interface {
	// ExtractURL downloads the listing page and extracts from it.
	ExtractURL(ctx context.Context, url string) (domain.VehicleRecord, error)
	// ExtractText extracts from already-fetched listing content. url is
	// recorded on the result and may be empty.
	ExtractText(ctx context.Context, content, url string) (domain.VehicleRecord, error)
}
