package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/docuflow/pdf2csv-api/pkg/config"
)

// HTTPClient calls the extraction service over HTTP. The service accepts an
// ordered batch of documents and answers with one result slot per document.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient constructs an extraction client from config.
func NewHTTPClient(cfg config.ExtractorConfig, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type extractRequest struct {
	Documents []Document `json:"documents"`
}

type extractResponse struct {
	Results []DocumentResult `json:"results"`
}

// ExtractBatch submits documents for extraction. The slot count of the
// response must equal the input count; a mismatch is treated as a
// call-level failure because silently dropped documents would corrupt
// progress accounting downstream.
func (c *HTTPClient) ExtractBatch(ctx context.Context, docs []Document) ([]DocumentResult, error) {
	payload, err := json.Marshal(extractRequest{Documents: docs})
	if err != nil {
		return nil, fmt.Errorf("marshal extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction service unreachable: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read extraction response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, truncate(string(body), 256))
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	if len(parsed.Results) != len(docs) {
		return nil, fmt.Errorf("extraction service returned %d results for %d documents", len(parsed.Results), len(docs))
	}

	c.logger.Sugar().Debugw("extraction batch complete",
		"documents", len(docs),
		"latency", time.Since(start),
	)
	return parsed.Results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
