package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ajitpratap0/thermalnetwork/internal/models"
)

// HTTPEngine posts sizing requests to an engine service.
type HTTPEngine struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPEngine creates an engine client for baseURL.
func NewHTTPEngine(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPEngine {
	return &HTTPEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (h *HTTPEngine) Size(ctx context.Context, req *Request) (*Summary, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	url := h.baseURL + "/v1/size"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: calling engine: %v", models.ErrExternalEngine, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", models.ErrExternalEngine, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: engine returned %d: %s", models.ErrExternalEngine, resp.StatusCode, tail(data))
	}

	summary, err := ParseSummary(data)
	if err != nil {
		return nil, err
	}
	if req.WorkDir != "" {
		if err := os.MkdirAll(req.WorkDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating work dir: %w", err)
		}
		if err := os.WriteFile(filepath.Join(req.WorkDir, SummaryFile), data, 0o600); err != nil {
			return nil, fmt.Errorf("saving summary: %w", err)
		}
	}
	h.logger.Debug("engine sized borefield", "ghe", req.GHEID, "boreholes", summary.BoreholeCount)
	return summary, nil
}
