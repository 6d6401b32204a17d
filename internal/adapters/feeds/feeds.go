// Package feeds wraps the upstream ESPN and The Odds API endpoints behind
// typed fetchers. Every fetch goes through the disk cache; parse failures
// and missing fields degrade to zero values instead of failing a batch.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cameronntaylor/nba-watchability/internal/adapters/cache"
	"github.com/cameronntaylor/nba-watchability/pkg/metrics"
)

// Default fetch configuration.
const (
	defaultFetchTimeout = 15 * time.Second
	maxBodyBytes        = 16 << 20
)

// Cache is the slice of the disk cache feeds depend on.
type Cache interface {
	GetOrFetch(ctx context.Context, namespace, key string, ttl time.Duration, fetch cache.Fetcher, out any) error
}

// getJSON fetches url through the cache, recording feed metrics on real
// fetches. The decoded body is cached raw and unmarshaled into out.
func getJSON(ctx context.Context, c Cache, client *http.Client, feed, key string, ttl time.Duration, url string, out any) error {
	return c.GetOrFetch(ctx, feed, key, ttl, func(ctx context.Context) (any, error) {
		start := time.Now()
		raw, err := fetchBody(ctx, client, url)
		if err != nil {
			metrics.RecordFeedFetchError(feed)
			return nil, err
		}
		metrics.RecordFeedFetch(feed, time.Since(start))
		return raw, nil
	}, out)
}

func fetchBody(ctx context.Context, client *http.Client, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s", ErrDecode, url)
	}
	return json.RawMessage(body), nil
}

// SeasonYear returns the ESPN season year for a date: seasons crossing the
// new year are labeled by the year they end in.
func SeasonYear(today time.Time) int {
	if today.Month() >= time.July {
		return today.Year() + 1
	}
	return today.Year()
}
