//go:build integration

package extract_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vehicle-deal-checker/pkg/extract"
	"github.com/donaldgifford/vehicle-deal-checker/pkg/logger"
)

const integrationListing = `<html><body>
<h1>2016 Honda Accord EX-L Sedan</h1>
<p>Price: $16,500 &middot; Mileage: 54,210 mi &middot; Tempe, AZ 85281</p>
<p>VIN 1HGCR2F86GA123456. One owner, very clean, new tires.</p>
</body></html>`

// Runs the full extractor against a local Ollama. OLLAMA_ENDPOINT and
// OLLAMA_MODEL override the defaults (http://localhost:11434, mistral).
func TestLLMExtractor_Ollama_Integration(t *testing.T) {
	endpoint := os.Getenv("OLLAMA_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "mistral"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ext := extract.NewLLMExtractor(
		extract.NewOllamaBackend(endpoint, model),
		extract.WithLogger(logger.Discard()),
	)

	rec, err := ext.ExtractText(ctx, integrationListing, "https://example.com/accord")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/accord", rec.URL)
	assert.NotEmpty(t, rec.Maker)
	if assert.NotNil(t, rec.Year) {
		assert.Equal(t, 2016, *rec.Year)
	}
	if rec.VIN != "" {
		assert.Len(t, rec.VIN, 17)
	}
}
