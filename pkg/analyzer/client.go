package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/models"
)

const retryBackoff = 1 * time.Second

// Client issues analysis calls to one analyzer endpoint. One instance per
// configured analyzer; safe for concurrent use.
type Client struct {
	cfg        *config.AnalyzerConfig
	httpClient *http.Client
	maxRetries int
	logger     *slog.Logger
}

// NewClient creates a client for the given analyzer. timeout bounds each
// individual call including connect, send, and receive.
func NewClient(cfg *config.AnalyzerConfig, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		logger:     slog.With("analyzer", cfg.ID),
	}
}

// ID returns the analyzer id this client talks to.
func (c *Client) ID() string {
	return c.cfg.ID
}

// Config returns the analyzer configuration.
func (c *Client) Config() *config.AnalyzerConfig {
	return c.cfg
}

// AnalyzeURL analyzes an image reachable by the analyzer over HTTP.
func (c *Client) AnalyzeURL(ctx context.Context, imageURL string) *models.AnalysisResult {
	return c.analyze(ctx, "url", imageURL)
}

// AnalyzeFile analyzes a local image by path. When the analyzer declares an
// optimal size, a pre-scaled variant is substituted if one exists on disk.
func (c *Client) AnalyzeFile(ctx context.Context, path string) *models.AnalysisResult {
	return c.analyze(ctx, "file", ResolveVariantPath(c.cfg.OptimalSize, path))
}

// analyze performs the HTTP GET with bounded retries. Retries apply only to
// transport errors and deadline expiry, never to a service error payload, and
// are skipped when less than the backoff remains before the deadline.
func (c *Client) analyze(ctx context.Context, param, value string) *models.AnalysisResult {
	var result *models.AnalysisResult

	for attempt := 0; ; attempt++ {
		result = c.call(ctx, param, value)
		if result.OK || !retryable(result.ErrorKind) || attempt >= c.maxRetries {
			return result
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < retryBackoff {
			return result
		}

		c.logger.Warn("Retrying analyzer call",
			"attempt", attempt+1, "kind", result.ErrorKind, "error", result.ErrorMessage)

		select {
		case <-time.After(retryBackoff):
		case <-ctx.Done():
			return result
		}
	}
}

// wireResponse is the unified analyzer response envelope.
type wireResponse struct {
	Service     string              `json:"service"`
	Status      string              `json:"status"`
	Predictions []models.Prediction `json:"predictions"`
	Metadata    wireMetadata        `json:"metadata"`
	Error       *wireError          `json:"error,omitempty"`
}

type wireMetadata struct {
	ProcessingTime   float64 `json:"processing_time"`
	ProcessingWidth  int     `json:"processing_width,omitempty"`
	ProcessingHeight int     `json:"processing_height,omitempty"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (c *Client) call(ctx context.Context, param, value string) *models.AnalysisResult {
	endpoint := fmt.Sprintf("%s?%s=%s", c.cfg.AnalyzeURL(), param, url.QueryEscape(value))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return failed(models.ErrorKindProtocol, fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := classifyTransportError(err)
		return failed(kind, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failed(models.ErrorKindProtocol,
			fmt.Sprintf("analyzer returned HTTP %d", resp.StatusCode))
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return failed(models.ErrorKindProtocol, fmt.Sprintf("decode response: %v", err))
	}
	return c.fromWire(&wire)
}

// fromWire validates the response envelope and predictions. Predictions with
// an unknown type tag are rejected individually; a missing status field fails
// the whole response.
func (c *Client) fromWire(wire *wireResponse) *models.AnalysisResult {
	switch wire.Status {
	case "success":
	case "error":
		msg := "analyzer reported an error"
		if wire.Error != nil && wire.Error.Message != "" {
			msg = wire.Error.Message
		}
		return failed(models.ErrorKindService, msg)
	default:
		return failed(models.ErrorKindProtocol,
			fmt.Sprintf("missing or unknown status %q", wire.Status))
	}

	predictions := make([]models.Prediction, 0, len(wire.Predictions))
	for i := range wire.Predictions {
		p := wire.Predictions[i]
		if err := p.Validate(); err != nil {
			c.logger.Warn("Rejecting prediction", "index", i, "error", err)
			continue
		}
		predictions = append(predictions, p)
	}

	return &models.AnalysisResult{
		OK:          true,
		Predictions: predictions,
		Metadata: models.ResultMetadata{
			ProcessingTimeSeconds: wire.Metadata.ProcessingTime,
			ProcessingWidth:       wire.Metadata.ProcessingWidth,
			ProcessingHeight:      wire.Metadata.ProcessingHeight,
		},
	}
}

func failed(kind models.ErrorKind, msg string) *models.AnalysisResult {
	return &models.AnalysisResult{
		OK:           false,
		ErrorKind:    kind,
		ErrorMessage: msg,
	}
}
