package insights

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gammazero/deque"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/metrics"
	"github.com/sirupsen/logrus"
)

// DefaultCacheCapacity is the number of insight payloads kept per process.
const DefaultCacheCapacity = 50

const (
	marketOverviewKey = "market-overview"
	globalRegionKey   = "global"
	metricsKeyLength  = 50
)

// Cache is a bounded in-process store of computed insights.
//
// Eviction is FIFO on first insertion: overwriting a key keeps its place in
// line and reads never refresh it. Individual operations are atomic, but two
// concurrent misses on the same key both compute and the last Set wins.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]Insights
	order    deque.Deque[string]
	logger   *logrus.Logger
}

func NewCache(capacity int, logger *logrus.Logger) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]Insights, capacity+1),
		logger:   logger,
	}
}

func (c *Cache) Get(key string) (Insights, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Set inserts or overwrites key, evicting the oldest key once over capacity.
func (c *Cache) Set(key string, value Insights) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order.PushBack(key)
	}
	c.entries[key] = value

	if len(c.entries) > c.capacity {
		oldest := c.order.PopFront()
		delete(c.entries, oldest)
		metrics.CacheEvictions.Inc()
		if c.logger != nil {
			c.logger.WithField("cache_key", oldest).Debug("Evicted insights cache entry")
		}
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Capacity() int {
	return c.capacity
}

// Keys returns the cached keys oldest first.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, c.order.Len())
	for i := 0; i < c.order.Len(); i++ {
		keys = append(keys, c.order.At(i))
	}
	return keys
}

// GenerateCacheKey fingerprints a request as subject-region-metrics.
//
// Only the first 50 characters of the serialized metrics take part, so two
// metric sets sharing that prefix alias to the same key.
func GenerateCacheKey(subjectID, region string, metricsValue interface{}, isAggregate bool) string {
	subject := subjectID
	if isAggregate {
		subject = marketOverviewKey
	}
	if region == "" {
		region = globalRegionKey
	}
	return fmt.Sprintf("%s-%s-%s", subject, region, truncateRunes(serializeMetrics(metricsValue), metricsKeyLength))
}

func serializeMetrics(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
