package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	platformredis "custodia/internal/platform/redis"
)

// Cache keeps recent summary snapshots in Redis. A nil *Cache or a nil Redis
// client disables caching; every lookup then misses.
type Cache struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewCache(client *platformredis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func summaryKey(from, to time.Time, jurisdiction string) string {
	return fmt.Sprintf("custodia:stats:summary:%s:%s:%s",
		from.Format(time.DateOnly), to.Format(time.DateOnly), jurisdiction)
}

// GetSummary returns the cached summary for the period and jurisdiction, or
// nil on a miss. Cache errors degrade to a miss; the aggregator is the source
// of truth.
func (c *Cache) GetSummary(ctx context.Context, from, to time.Time, jurisdiction string) *Summary {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, summaryKey(from, to, jurisdiction)).Bytes()
	if err != nil {
		return nil
	}
	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

// SetSummary stores a summary snapshot with the configured TTL. Best effort.
func (c *Cache) SetSummary(ctx context.Context, summary *Summary) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	c.client.Set(ctx, summaryKey(summary.From, summary.To, summary.Jurisdiction), raw, c.ttl)
}
