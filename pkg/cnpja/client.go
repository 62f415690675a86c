// Package cnpja provides a client for the CNPJá office search API.
package cnpja

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/cnpj-leads/internal/model"
)

const dateLayout = "2006-01-02"

// Client defines the registry search operations.
type Client interface {
	// Search fetches one page of offices matching params.
	Search(ctx context.Context, params SearchParams) (*SearchResponse, error)
	// SearchAll follows the next-page token for up to maxPages pages, one
	// request at a time, and returns every record.
	SearchAll(ctx context.Context, params SearchParams, maxPages int) ([]model.Record, error)
}

// SearchParams holds the office search filters.
type SearchParams struct {
	FoundedFrom time.Time
	FoundedTo   time.Time
	// Optant restricts the search to SIMEI (micro-entrepreneur) optants.
	Optant bool
	Limit  int
	// Token is the next-page cursor of a previous response.
	Token string
}

// Query encodes the params the way the API expects them. The lower bound
// starts at midnight and the upper bound ends one second before the next day.
func (p SearchParams) Query() url.Values {
	q := url.Values{}
	q.Set("founded.gte", p.FoundedFrom.Format(dateLayout)+"T00:00:00Z")
	q.Set("founded.lte", p.FoundedTo.Format(dateLayout)+"T23:59:59Z")
	q.Set("company.simei.optant.eq", strconv.FormatBool(p.Optant))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Token != "" {
		q.Set("token", p.Token)
	}
	return q
}

// SearchResponse is the parsed office search response.
type SearchResponse struct {
	Next    string         `json:"next,omitempty"`
	Limit   int            `json:"limit"`
	Count   int            `json:"count"`
	Records []model.Record `json:"records"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cnpja: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit paces page requests to perMinute requests per minute.
// Zero or negative disables pacing.
func WithRateLimit(perMinute int) Option {
	return func(c *httpClient) {
		if perMinute <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new CNPJá client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.cnpja.com",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	reqURL := c.baseURL + "/office?" + params.Query().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "cnpja: create request")
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	zap.L().Debug("cnpja: search", zap.String("url", reqURL))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "cnpja: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "cnpja: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "cnpja: unmarshal response")
	}

	return &result, nil
}

func (c *httpClient) SearchAll(ctx context.Context, params SearchParams, maxPages int) ([]model.Record, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var records []model.Record
	for page := 1; page <= maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return records, eris.Wrap(err, "cnpja: rate limiter wait")
		}

		resp, err := c.Search(ctx, params)
		if err != nil {
			return records, err
		}
		records = append(records, resp.Records...)

		zap.L().Debug("cnpja: page fetched",
			zap.Int("page", page),
			zap.Int("records", len(resp.Records)),
			zap.Int("total", resp.Count),
		)

		if resp.Next == "" || len(resp.Records) == 0 {
			break
		}
		params.Token = resp.Next
	}

	return records, nil
}
