package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/cenkalti/backoff/v4"
	"github.com/xeipuuv/gojsonschema"
)

// recordListSchema is the minimum shape every games-resource response
// must satisfy before mapping. Validating up front means a remote
// query-language mismatch fails with the query and body attached
// instead of a half-mapped record.
const recordListSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"name": {"type": "string", "minLength": 1}
		},
		"required": ["id", "name"]
	}
}`

// Client queries the remote game catalog. Every call obtains a token
// from the TokenProvider first; headers are composed per request so
// concurrent calls never share mutable client state.
type Client struct {
	baseURL    string
	clientID   string
	tokens     *TokenProvider
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries uint64
}

func NewClient(baseURL, clientID string, tokens *TokenProvider, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		clientID:   clientID,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		maxRetries: 2,
	}
}

// SearchByTitle runs a full-text search against the games resource.
func (c *Client) SearchByTitle(ctx context.Context, term string, limit int) ([]Record, error) {
	query := fmt.Sprintf("fields %s; search %q; limit %d;", strings.Join(gameFields, ","), term, limit)
	return c.queryGames(ctx, query)
}

// GetByID fetches a single record by external id. It returns nil when
// the catalog has no record for the id.
func (c *Client) GetByID(ctx context.Context, id int64) (*Record, error) {
	q := Query{Fields: gameFields, Where: fmt.Sprintf("id = %d", id), Limit: 1}
	records, err := c.queryGames(ctx, q.String())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// GetPopular returns games sorted by rating count.
func (c *Client) GetPopular(ctx context.Context, limit int) ([]Record, error) {
	q := Query{
		Fields: gameFields,
		Where:  "rating_count > 50 & rating != null",
		Sort:   "rating_count desc",
		Limit:  limit,
	}
	return c.queryGames(ctx, q.String())
}

// GetRecent returns recently released games.
func (c *Client) GetRecent(ctx context.Context, limit int) ([]Record, error) {
	q := Query{
		Fields: gameFields,
		Where:  fmt.Sprintf("first_release_date != null & first_release_date <= %d", time.Now().Unix()),
		Sort:   "first_release_date desc",
		Limit:  limit,
	}
	return c.queryGames(ctx, q.String())
}

// GetByGenre returns games carrying the given genre external id.
func (c *Client) GetByGenre(ctx context.Context, genreExternalID int64, limit int) ([]Record, error) {
	q := Query{
		Fields: gameFields,
		Where:  fmt.Sprintf("genres = (%d)", genreExternalID),
		Sort:   "rating_count desc",
		Limit:  limit,
	}
	return c.queryGames(ctx, q.String())
}

// GetByPlatform returns games released on the given platform external id.
func (c *Client) GetByPlatform(ctx context.Context, platformExternalID int64, limit int) ([]Record, error) {
	q := Query{
		Fields: gameFields,
		Where:  fmt.Sprintf("platforms = (%d)", platformExternalID),
		Sort:   "rating_count desc",
		Limit:  limit,
	}
	return c.queryGames(ctx, q.String())
}

// GetTaxonomyList fetches one taxonomy resource as raw JSON with the
// fixed projection and a limit of 500.
func (c *Client) GetTaxonomyList(ctx context.Context, kind TaxonomyKind) (json.RawMessage, error) {
	q := Query{Fields: taxonomyFields, Sort: "name asc", Limit: 500}
	body, err := c.do(ctx, string(kind), q.String())
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// GetPlaytimeStub looks up the catalog's own completion-time resource
// for a game. The data is advisory: any failure yields nil, never an
// error, so it can never block an otherwise-successful import.
func (c *Client) GetPlaytimeStub(ctx context.Context, gameExternalID int64) *TimeToBeatStub {
	q := Query{
		Fields: []string{"id", "game_id", "hastily", "normally", "completely", "count"},
		Where:  fmt.Sprintf("game_id = %d", gameExternalID),
		Limit:  1,
	}

	body, err := c.doOnce(ctx, "game_time_to_beats", q.String())
	if err != nil {
		c.logger.Debug("Playtime stub lookup failed", slog.Int64("game_id", gameExternalID), slog.Any("error", err))
		return nil
	}

	var stubs []TimeToBeatStub
	if err := json.Unmarshal(body, &stubs); err != nil || len(stubs) == 0 {
		return nil
	}
	return &stubs[0]
}

func (c *Client) queryGames(ctx context.Context, query string) ([]Record, error) {
	body, err := c.do(ctx, "games", query)
	if err != nil {
		return nil, err
	}

	if err := validateRecordList(body); err != nil {
		return nil, &CatalogError{Query: query, Body: string(body), Err: err}
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &CatalogError{Query: query, Body: string(body), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return records, nil
}

// do runs a query with a bounded retry for transient transport errors
// and server-side 5xx responses. Client-side failures are permanent.
func (c *Client) do(ctx context.Context, resource, query string) ([]byte, error) {
	var body []byte

	operation := func() error {
		var err error
		body, err = c.doOnce(ctx, resource, query)
		if err != nil {
			var cerr *CatalogError
			if errors.As(err, &cerr) && cerr.Status >= 400 && cerr.Status < 500 {
				return backoff.Permanent(err)
			}
			var aerr *AuthError
			if errors.As(err, &aerr) {
				return backoff.Permanent(err)
			}
			c.logger.Warn("Catalog query failed, retrying",
				slog.String("resource", resource),
				slog.Any("error", err))
			return err
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	return body, nil
}

// doOnce issues a single query with freshly composed headers.
func (c *Client) doOnce(ctx context.Context, resource, query string) ([]byte, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s", c.baseURL, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(query))
	if err != nil {
		return nil, &CatalogError{Query: query, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Catalog query", slog.String("resource", resource), slog.String("query", query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CatalogError{Query: query, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", slog.Any("error", err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CatalogError{Query: query, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CatalogError{Query: query, Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func validateRecordList(body []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(recordListSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("failed to validate response: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("response failed schema validation: %s", strings.Join(msgs, "; "))
	}
	return nil
}
