package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/emojivision/mosaic/pkg/config"
)

// SimilarityClient scores caption→image similarity via the CLIP analyzer's
// scoring endpoint.
type SimilarityClient struct {
	baseURL    string
	path       string
	httpClient *http.Client
}

// NewSimilarityClient creates a similarity client bound to the given analyzer
// (normally the CLIP service).
func NewSimilarityClient(cfg *config.AnalyzerConfig, path string, timeout time.Duration) *SimilarityClient {
	return &SimilarityClient{
		baseURL:    cfg.BaseURL(),
		path:       path,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type similarityResponse struct {
	Status          string  `json:"status"`
	SimilarityScore float64 `json:"similarity_score"`
	Caption         string  `json:"caption"`
	ImageSource     string  `json:"image_source"`
}

// Score returns the similarity of caption to the image in [0,1].
// input is "url" or "file"; value is the corresponding image reference.
func (c *SimilarityClient) Score(ctx context.Context, input, value, caption string) (float64, error) {
	q := url.Values{}
	q.Set(input, value)
	q.Set("caption", caption)
	endpoint := c.baseURL + c.path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("similarity call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("similarity endpoint returned HTTP %d", resp.StatusCode)
	}

	var sr similarityResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decode similarity response: %w", err)
	}
	if sr.Status != "success" {
		return 0, fmt.Errorf("similarity scoring failed with status %q", sr.Status)
	}
	if sr.SimilarityScore < 0 || sr.SimilarityScore > 1 {
		return 0, fmt.Errorf("similarity score %v out of range", sr.SimilarityScore)
	}
	return sr.SimilarityScore, nil
}
