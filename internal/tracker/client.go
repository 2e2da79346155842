// Package tracker provides a REST client for the Pivotal Tracker v5 API.
// It implements a deep module interface - simple methods hiding pagination,
// fan-out and payload normalization.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/h0rv/epicgantt/internal/config"
	"github.com/h0rv/epicgantt/internal/logger"
	"golang.org/x/time/rate"
)

// TokenHeader carries the API token on every request.
const TokenHeader = "X-TrackerToken"

var (
	// ErrUnauthorized indicates the token was rejected.
	ErrUnauthorized = errors.New("tracker token invalid or lacking access")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("tracker resource not found")
	// ErrRateLimited indicates the API answered 429.
	ErrRateLimited = errors.New("tracker rate limit exceeded")
	// ErrInvalidResponse indicates a payload that could not be normalized.
	ErrInvalidResponse = errors.New("invalid tracker response")
)

// Client is a tracker REST API client.
// It provides high-level methods returning domain types.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	limiter        *rate.Limiter
	pageSize       int
	maxConcurrency int
}

// New creates a client from the runtime configuration and an API token.
// The token is passed in explicitly; the client never reads the environment.
func New(cfg config.Config, token string) *Client {
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = cfg.MaxConcurrency
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          token,
		limiter:        rate.NewLimiter(limit, burst),
		pageSize:       cfg.PageSize,
		maxConcurrency: cfg.MaxConcurrency,
	}
}

// makeRequest executes an authenticated GET and decodes the JSON body into resp.
func (c *Client) makeRequest(ctx context.Context, path string, query url.Values, resp interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(TokenHeader, c.token)
	req.Header.Set("Accept", "application/json")

	logger.Get(ctx).Debug().Str("path", path).Str("query", query.Encode()).Msg("tracker request")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", path, ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", path, ErrRateLimited)
	default:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("%s: unexpected status %d: %s", path, res.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(res.Body).Decode(resp); err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrInvalidResponse, err)
	}
	return nil
}

// paginate walks a limit/offset collection sequentially; page N+1 is only
// requested once page N came back full.
func paginate[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	offset := 0
	for {
		query := url.Values{}
		query.Set("limit", fmt.Sprint(c.pageSize))
		query.Set("offset", fmt.Sprint(offset))

		var page []T
		if err := c.makeRequest(ctx, path, query, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < c.pageSize {
			return all, nil
		}
		offset += c.pageSize
	}
}
