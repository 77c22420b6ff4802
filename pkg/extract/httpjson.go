package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// apiError is returned for non-200 responses from an LLM API.
type apiError struct {
	backend string
	status  int
	detail  string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.backend, e.status, e.detail)
}

// postJSON marshals payload, POSTs it to url, and decodes a 200 response into
// out. Non-200 bodies are handed to describe (which may be nil) to build a
// readable error.
func postJSON(
	ctx context.Context,
	client *http.Client,
	backend, url string,
	headers map[string]string,
	payload, out any,
	describe func(body []byte) string,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calling %s: %w", backend, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := string(respBody)
		if describe != nil {
			if d := describe(respBody); d != "" {
				detail = d
			}
		}
		return &apiError{backend: backend, status: resp.StatusCode, detail: detail}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", backend, err)
	}

	return nil
}
