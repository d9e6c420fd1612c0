package warehouse

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// SchemaCache serves warehouse schema metadata with a TTL. Concurrent misses
// share a single metadata fetch via singleflight, so a burst of requests
// after expiry produces one warehouse round trip.
type SchemaCache struct {
	wh  Warehouse
	ttl time.Duration

	mu        sync.RWMutex
	schema    map[string][]string
	expiresAt time.Time
	sf        singleflight.Group
}

func NewSchemaCache(wh Warehouse, ttl time.Duration) *SchemaCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SchemaCache{wh: wh, ttl: ttl}
}

// Get returns the cached schema, fetching it when stale. A fetch failure
// with a warm (expired) cache returns the stale copy rather than failing the
// request.
func (c *SchemaCache) Get(ctx context.Context) (map[string][]string, error) {
	c.mu.RLock()
	if c.schema != nil && time.Now().Before(c.expiresAt) {
		s := c.schema
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sf.Do("schema", func() (any, error) {
		// Re-check inside singleflight in case another goroutine already
		// refreshed while we waited to enter.
		c.mu.RLock()
		if c.schema != nil && time.Now().Before(c.expiresAt) {
			s := c.schema
			c.mu.RUnlock()
			return s, nil
		}
		c.mu.RUnlock()

		start := time.Now()
		schema, err := c.wh.Schema(ctx)
		if err != nil {
			c.mu.RLock()
			stale := c.schema
			c.mu.RUnlock()
			if stale != nil {
				log.Warn().Err(err).Msg("schema refresh failed, serving stale copy")
				return stale, nil
			}
			return nil, err
		}

		c.mu.Lock()
		c.schema = schema
		c.expiresAt = time.Now().Add(c.ttl)
		c.mu.Unlock()

		log.Info().
			Int("tables", len(schema)).
			Dur("fetch", time.Since(start)).
			Msg("schema cached")
		return schema, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string][]string), nil
}

// Describe renders the schema as a prompt-friendly listing, tables sorted
// for stable output.
func (c *SchemaCache) Describe(ctx context.Context) (string, error) {
	schema, err := c.Get(ctx)
	if err != nil {
		return "", err
	}
	tables := make([]string, 0, len(schema))
	for t := range schema {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	var sb strings.Builder
	for _, t := range tables {
		fmt.Fprintf(&sb, "%s:\n", t)
		for _, col := range schema[t] {
			fmt.Fprintf(&sb, "  - %s\n", col)
		}
	}
	return sb.String(), nil
}
