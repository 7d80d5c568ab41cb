package syllable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Counter reports how many syllables a line of text has.
type Counter interface {
	Count(ctx context.Context, text string) (int, error)
}

// WordsResponse is the body of GET /words/{word}/syllables.
type WordsResponse struct {
	Word      string `json:"word"`
	Syllables *struct {
		Count int      `json:"count"`
		List  []string `json:"list"`
	} `json:"syllables"`
}

// Client asks a WordsAPI compatible service for syllable counts.
type Client struct {
	BaseURL string
	APIKey  string
	APIHost string

	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client whose requests give up after timeout.
func NewClient(baseURL, apiKey, apiHost string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		APIHost:    apiHost,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("syllable"),
	}
}

// Count makes one request for the whole line.
func (c *Client) Count(ctx context.Context, text string) (int, error) {
	reqURL := fmt.Sprintf("%s/words/%s/syllables", c.BaseURL, url.PathEscape(text))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("words API request creation error: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.APIKey)
	}
	if c.APIHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.APIHost)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to call words API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("words API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var wr WordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return 0, fmt.Errorf("failed to decode words API response: %w", err)
	}

	count := 0
	if wr.Syllables != nil {
		count = wr.Syllables.Count
	}
	c.logger.Debug("Syllable lookup",
		zap.String("text", text),
		zap.Int("count", count),
		zap.Duration("took", time.Since(start)))
	return count, nil
}
