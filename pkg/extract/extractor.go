package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// ErrEmptyResponse is returned when the LLM answers with no content.
var ErrEmptyResponse = errors.New("LLM returned empty response")

// LLMExtractor implements the Extractor interface using an LLM backend.
type LLMExtractor struct {
	backend     LLMBackend
	fetcher     PageFetcher
	temperature float64
	maxTokens   int
	log         *slog.Logger
}

// LLMExtractorOption configures the LLMExtractor.
type LLMExtractorOption func(*LLMExtractor)

// WithTemperature sets the LLM temperature for extraction.
func WithTemperature(t float64) LLMExtractorOption {
	return func(e *LLMExtractor) {
		e.temperature = t
	}
}

// WithMaxTokens sets the max tokens for LLM responses.
func WithMaxTokens(n int) LLMExtractorOption {
	return func(e *LLMExtractor) {
		e.maxTokens = n
	}
}

// WithFetcher replaces the page fetcher used by ExtractURL.
func WithFetcher(f PageFetcher) LLMExtractorOption {
	return func(e *LLMExtractor) {
		e.fetcher = f
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) LLMExtractorOption {
	return func(e *LLMExtractor) {
		e.log = l
	}
}

// NewLLMExtractor creates a new LLMExtractor.
func NewLLMExtractor(backend LLMBackend, opts ...LLMExtractorOption) *LLMExtractor {
	e := &LLMExtractor{
		backend:     backend,
		fetcher:     NewHTTPFetcher(),
		temperature: 0.1,
		maxTokens:   1024,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractURL fetches the listing page and extracts a record from it.
func (e *LLMExtractor) ExtractURL(ctx context.Context, url string) (domain.VehicleRecord, error) {
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return domain.VehicleRecord{}, err
	}
	return e.ExtractText(ctx, page, url)
}

// ExtractText extracts a record from listing content.
func (e *LLMExtractor) ExtractText(
	ctx context.Context,
	content, url string,
) (domain.VehicleRecord, error) {
	if strings.TrimSpace(content) == "" {
		return domain.VehicleRecord{}, fmt.Errorf("listing content is empty")
	}

	prompt, err := RenderExtractPrompt(content)
	if err != nil {
		return domain.VehicleRecord{}, err
	}

	resp, err := e.backend.Generate(ctx, GenerateRequest{
		Prompt:      prompt,
		SystemMsg:   ExtractSystemMsg,
		Format:      FormatJSON,
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		return domain.VehicleRecord{}, fmt.Errorf("calling LLM for extraction: %w", err)
	}

	raw, err := ParseRawListing(resp.Content)
	if err != nil {
		return domain.VehicleRecord{}, err
	}

	rec, dropped := Scrub(Sanitize(raw, url))
	if len(dropped) > 0 {
		e.log.Warn("dropped implausible extracted fields",
			"url", url,
			"fields", dropped,
			"backend", e.backend.Name(),
		)
	}

	e.log.Debug("extracted listing",
		"url", url,
		"maker", rec.Maker,
		"model", rec.Model,
		"tokens", resp.Usage.TotalTokens,
	)

	return rec, nil
}

// ParseRawListing decodes an LLM answer, tolerating markdown code fences
// around the JSON.
func ParseRawListing(content string) (RawListing, error) {
	text := StripCodeFences(content)
	if text == "" {
		return RawListing{}, ErrEmptyResponse
	}

	var raw RawListing
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return RawListing{}, fmt.Errorf("parsing LLM JSON response: %w", err)
	}
	return raw, nil
}

// StripCodeFences removes ```json and ``` markers and surrounding whitespace.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
