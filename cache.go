package jagged

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ArrayCache holds materialized VirtualArrays by cache key.
type ArrayCache interface {
	Get(key string) (Content, bool)
	Put(key string, c Content)
}

// LRUCache is an ArrayCache that keeps the most recently used arrays.
type LRUCache struct {
	cache  *lru.Cache[string, Content]
	logger log.Logger

	hits      prometheus.Counter
	misses    prometheus.Counter
	puts      prometheus.Counter
	evictions prometheus.Counter
}

var _ ArrayCache = (*LRUCache)(nil)

type cacheOptions struct {
	logger     log.Logger
	registerer prometheus.Registerer
}

// CacheOption configures an LRUCache.
type CacheOption func(*cacheOptions)

// WithCacheLogger logs cache misses and evictions at debug level.
func WithCacheLogger(logger log.Logger) CacheOption {
	return func(o *cacheOptions) { o.logger = logger }
}

// WithCacheRegisterer registers the cache counters with reg. Without it the
// counters are kept but not exported.
func WithCacheRegisterer(reg prometheus.Registerer) CacheOption {
	return func(o *cacheOptions) { o.registerer = reg }
}

// NewLRUCache holds at most size arrays.
func NewLRUCache(size int, opts ...CacheOption) (*LRUCache, error) {
	o := cacheOptions{logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	factory := promauto.With(o.registerer)
	c := &LRUCache{
		logger: o.logger,
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "jagged",
			Subsystem: "array_cache",
			Name:      "hits_total",
			Help:      "Number of virtual array lookups served from the cache.",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "jagged",
			Subsystem: "array_cache",
			Name:      "misses_total",
			Help:      "Number of virtual array lookups not found in the cache.",
		}),
		puts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "jagged",
			Subsystem: "array_cache",
			Name:      "puts_total",
			Help:      "Number of materialized arrays stored in the cache.",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "jagged",
			Subsystem: "array_cache",
			Name:      "evictions_total",
			Help:      "Number of arrays evicted from the cache.",
		}),
	}

	cache, err := lru.NewWithEvict[string, Content](size, func(key string, _ Content) {
		c.evictions.Inc()
		level.Debug(c.logger).Log("msg", "evicted array", "key", key)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating array cache of size %d", size)
	}
	c.cache = cache
	return c, nil
}

// Get returns the array cached under key, counting a hit or a miss.
func (c *LRUCache) Get(key string) (Content, bool) {
	out, ok := c.cache.Get(key)
	if !ok {
		c.misses.Inc()
		level.Debug(c.logger).Log("msg", "cache miss", "key", key)
		return nil, false
	}
	c.hits.Inc()
	return out, true
}

// Put caches content under key, evicting the least recently used array when full.
func (c *LRUCache) Put(key string, content Content) {
	c.puts.Inc()
	c.cache.Add(key, content)
}

// Len is the number of cached arrays.
func (c *LRUCache) Len() int { return c.cache.Len() }

// Purge drops every cached array.
func (c *LRUCache) Purge() { c.cache.Purge() }
