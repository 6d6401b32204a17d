// Package cache provides a TTL'd on-disk JSON cache for upstream feed
// responses, with stale-on-error fallback.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cameronntaylor/nba-watchability/pkg/logger"
	"github.com/cameronntaylor/nba-watchability/pkg/metrics"
)

const (
	keyHashLen      = 16
	defaultTTL      = 15 * time.Minute
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// envelope is the on-disk record wrapping a cached payload.
type envelope struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
}

// Fetcher produces a fresh payload when the cache cannot serve one.
type Fetcher func(ctx context.Context) (any, error)

// DiskCache stores JSON payloads as one file per key under a base
// directory, namespaced per feed.
type DiskCache struct {
	dir    string
	ttl    time.Duration
	clock  func() time.Time
	logger logger.Logger
}

// New creates a cache rooted at dir. The directory is created lazily on
// first write.
func New(dir string, opts ...Option) *DiskCache {
	c := &DiskCache{
		dir:    dir,
		ttl:    defaultTTL,
		clock:  time.Now,
		logger: logger.Get().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// path maps a namespace and key to a stable file path. Keys are hashed so
// URLs and query strings never leak into filenames.
func (c *DiskCache) path(namespace, key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])[:keyHashLen] + ".json"
	return filepath.Join(c.dir, namespace, name)
}

// GetOrFetch serves the cached payload for (namespace, key) when it is
// younger than ttl, otherwise calls fetch and caches the result. When fetch
// fails and a stale entry exists, the stale entry is served instead of the
// error. A non-positive ttl falls back to the cache default. out must be a
// pointer; the payload is unmarshaled into it.
func (c *DiskCache) GetOrFetch(ctx context.Context, namespace, key string, ttl time.Duration, fetch Fetcher, out any) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	p := c.path(namespace, key)

	env, readErr := c.read(p)
	if readErr == nil && c.clock().Sub(env.FetchedAt) < ttl {
		metrics.RecordCacheHit()
		return json.Unmarshal(env.Payload, out)
	}
	metrics.RecordCacheMiss()

	fresh, fetchErr := fetch(ctx)
	if fetchErr != nil {
		if readErr == nil {
			// Serve stale rather than fail the batch.
			metrics.RecordCacheStaleServe()
			c.logger.Warn(ctx, "fetch failed, serving stale cache entry",
				logger.String("namespace", namespace),
				logger.Error(fetchErr),
			)
			return json.Unmarshal(env.Payload, out)
		}
		return fmt.Errorf("%w: %s: %v", ErrFetchFailed, namespace, fetchErr)
	}

	payload, err := json.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := c.write(p, envelope{FetchedAt: c.clock(), Key: key, Payload: payload}); err != nil {
		metrics.RecordCacheWriteError()
		c.logger.Warn(ctx, "cache write failed",
			logger.String("namespace", namespace),
			logger.Error(err),
		)
	}
	return json.Unmarshal(payload, out)
}

// Invalidate drops the entry for (namespace, key) if present.
func (c *DiskCache) Invalidate(namespace, key string) error {
	err := os.Remove(c.path(namespace, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *DiskCache) read(path string) (envelope, error) {
	var env envelope
	data, err := os.ReadFile(path)
	if err != nil {
		return env, err
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, path, err)
	}
	return env, nil
}

// write lands the entry via a temp file and an atomic rename so readers
// never observe a partial entry.
func (c *DiskCache) write(path string, env envelope) error {
	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, defaultFileMode); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
