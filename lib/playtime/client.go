// Package playtime looks up aggregate completion-time statistics for a
// game title against the playtime proxy service. The data backs an
// optional enrichment step, so the client converts every failure into
// a nil result and never returns an error.
package playtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"
)

// Record is one title's completion-time statistics. Durations are in
// seconds; the Polled counts are how many submissions back each figure.
type Record struct {
	ID                   int64  `json:"id"`
	Title                string `json:"title"`
	MainSeconds          int    `json:"main"`
	MainPolled           int    `json:"main_polled"`
	MainExtraSeconds     int    `json:"main_extra"`
	MainExtraPolled      int    `json:"main_extra_polled"`
	CompletionistSeconds int    `json:"completionist"`
	CompletionistPolled  int    `json:"completionist_polled"`
	AllStylesSeconds     int    `json:"all_styles"`
	AllStylesPolled      int    `json:"all_styles_polled"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Lookup searches the proxy for the given title. A case-insensitive
// exact title match wins; otherwise the first result is returned as an
// approximate match. Blank input, non-success status, an empty result
// set, and any transport or parse failure all yield nil.
func (c *Client) Lookup(ctx context.Context, title string) *Record {
	if strings.TrimSpace(title) == "" {
		return nil
	}

	u := fmt.Sprintf("%s/query?title=%s", c.baseURL, url.QueryEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.logger.Debug("Failed to create playtime request", slog.Any("error", err))
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Playtime lookup failed", slog.String("title", title), slog.Any("error", err))
		return nil
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", slog.Any("error", err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("Playtime proxy returned non-success status",
			slog.String("title", title),
			slog.Int("status", resp.StatusCode))
		return nil
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		c.logger.Debug("Failed to decode playtime response", slog.String("title", title), slog.Any("error", err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	for i := range records {
		if strings.EqualFold(records[i].Title, title) {
			return &records[i]
		}
	}

	c.logger.Debug("No exact playtime match, using first result",
		slog.String("title", title),
		slog.String("matched", records[0].Title))
	return &records[0]
}
