// Package catalog retrieves raw candidate events from the GraceDB superevent
// service. It normalizes the service's schema-variable response envelope into
// a flat candidate list and leaves all semantic filtering to callers.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/gwpulse/gwpulse/internal/config"
	"github.com/gwpulse/gwpulse/internal/models"
)

// envelopeKeys are the response keys under which the service has been
// observed to expose the result list.
var envelopeKeys = []string{"superevents", "results", "events"}

// Client queries the superevent catalog over HTTP.
type Client struct {
	endpoint        string
	httpClient      *http.Client
	retry           RetryPolicy
	simplifiedRetry bool
	logger          *slog.Logger
}

// NewClient creates a catalog client for the configured endpoint.
func NewClient(cfg config.CatalogConfig, logger *slog.Logger) *Client {
	return &Client{
		endpoint:        cfg.Endpoint,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		retry:           DefaultRetryPolicy(),
		simplifiedRetry: cfg.SimplifiedRetry,
		logger:          logger,
	}
}

// Fetch retrieves candidates matching the query, newest first. Transport
// failures and unrecognized response shapes degrade to an empty list; the
// returned error reports what went wrong but never carries partial results.
// When enabled, a rejected full query is retried once in simplified form.
func (c *Client) Fetch(ctx context.Context, q models.CatalogQuery) ([]models.Superevent, error) {
	events, err := c.fetchOnce(ctx, q)
	if err == nil {
		return events, nil
	}

	if c.simplifiedRetry && !q.IsSimplified() {
		c.logger.Warn("catalog query failed, retrying simplified",
			"query", q.String(),
			"error", err,
		)
		if events, retryErr := c.fetchOnce(ctx, q.Simplified()); retryErr == nil {
			return events, nil
		}
	}

	return nil, err
}

func (c *Client) fetchOnce(ctx context.Context, q models.CatalogQuery) ([]models.Superevent, error) {
	reqURL, err := c.buildURL(q)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = Retry(ctx, c.retry, func() error {
		b, err := c.get(ctx, reqURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog fetch: %w", err)
	}

	events := normalizeEnvelope(body)
	c.logger.Debug("catalog fetch complete", "query", q.String(), "count", len(events))
	return events, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewRetryableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewRetryableError(err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, NewRetryableError(fmt.Errorf("catalog returned status %d", resp.StatusCode))
	default:
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
}

func (c *Client) buildURL(q models.CatalogQuery) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid catalog endpoint %s: %w", c.endpoint, err)
	}

	values := u.Query()
	if query := q.String(); query != "" {
		values.Set("query", query)
	}
	if q.Count > 0 {
		values.Set("count", strconv.Itoa(q.Count))
	}
	values.Set("order", "-created")
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// normalizeEnvelope extracts the candidate list from a response body. The
// list may appear under one of several keys or the body may itself be the
// list; any other shape yields an empty result. Elements that do not decode
// as candidates are dropped individually.
func normalizeEnvelope(body []byte) []models.Superevent {
	root := gjson.ParseBytes(body)

	list := root
	if !root.IsArray() {
		list = gjson.Result{}
		for _, key := range envelopeKeys {
			if v := root.Get(key); v.IsArray() {
				list = v
				break
			}
		}
	}
	if !list.IsArray() {
		return nil
	}

	var events []models.Superevent
	list.ForEach(func(_, elem gjson.Result) bool {
		var ev models.Superevent
		if err := json.Unmarshal([]byte(elem.Raw), &ev); err == nil && ev.SupereventID != "" {
			events = append(events, ev)
		}
		return true
	})
	return events
}
