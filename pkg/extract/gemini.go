package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com"
	defaultGeminiModel    = "gemini-1.5-pro"
)

// GeminiBackend implements LLMBackend using the Google Generative Language
// generateContent API.
type GeminiBackend struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// GeminiOption configures the GeminiBackend.
type GeminiOption func(*GeminiBackend)

// WithGeminiEndpoint overrides the API base URL.
func WithGeminiEndpoint(u string) GeminiOption {
	return func(b *GeminiBackend) {
		if u != "" {
			b.endpoint = strings.TrimRight(u, "/")
		}
	}
}

// WithGeminiModel overrides the default model.
func WithGeminiModel(model string) GeminiOption {
	return func(b *GeminiBackend) {
		if model != "" {
			b.model = model
		}
	}
}

// WithGeminiAPIKey overrides the API key.
func WithGeminiAPIKey(key string) GeminiOption {
	return func(b *GeminiBackend) {
		b.apiKey = key
	}
}

// WithGeminiHTTPClient overrides the default HTTP client.
func WithGeminiHTTPClient(c *http.Client) GeminiOption {
	return func(b *GeminiBackend) {
		b.client = c
	}
}

// NewGeminiBackend creates a Gemini backend. The API key defaults to
// GEMINI_API_KEY, then GOOGLE_API_KEY.
func NewGeminiBackend(opts ...GeminiOption) *GeminiBackend {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("GOOGLE_API_KEY")
	}

	b := &GeminiBackend{
		endpoint: defaultGeminiEndpoint,
		model:    defaultGeminiModel,
		apiKey:   key,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the backend name.
func (*GeminiBackend) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

func describeGeminiError(body []byte) string {
	var apiErr struct {
		Error struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) != nil || apiErr.Error.Message == "" {
		return ""
	}
	return apiErr.Error.Status + ": " + apiErr.Error.Message
}

// Generate calls models/{model}:generateContent and concatenates the text
// parts of the first candidate.
func (b *GeminiBackend) Generate(
	ctx context.Context,
	req GenerateRequest,
) (GenerateResponse, error) {
	if b.apiKey == "" {
		return GenerateResponse{}, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.SystemMsg != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemMsg}}}
	}
	if req.Temperature > 0 {
		payload.GenerationConfig.Temperature = &req.Temperature
	}
	if req.Format == FormatJSON {
		payload.GenerationConfig.ResponseMimeType = "application/json"
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", b.endpoint, url.PathEscape(b.model))
	headers := map[string]string{"x-goog-api-key": b.apiKey}

	var apiResp geminiResponse
	if err := postJSON(
		ctx, b.client, "gemini", endpoint, headers, payload, &apiResp, describeGeminiError,
	); err != nil {
		return GenerateResponse{}, err
	}

	if len(apiResp.Candidates) == 0 {
		return GenerateResponse{}, fmt.Errorf("empty candidates from gemini")
	}

	var sb strings.Builder
	for _, p := range apiResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return GenerateResponse{}, fmt.Errorf(
			"empty response from gemini (finish reason %q)", apiResp.Candidates[0].FinishReason,
		)
	}

	model := apiResp.ModelVersion
	if model == "" {
		model = b.model
	}

	return GenerateResponse{
		Content: sb.String(),
		Model:   model,
		Usage: TokenUsage{
			PromptTokens:     apiResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: apiResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      apiResp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
