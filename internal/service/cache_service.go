package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

// ScrapeCacheRepository abstracts a shared store for per-session scrape contexts.
type ScrapeCacheRepository interface {
	Get(ctx context.Context, sessionID string) (*models.ScrapeContext, error)
	Put(ctx context.Context, sc *models.ScrapeContext) error
}

type cacheMetrics interface {
	RecordCacheLookup(hit bool)
}

type memoryEntry struct {
	value      models.ScrapeContext
	lastAccess time.Time
}

// ScrapeCache remembers the last page scraped in each chat session. Entries expire
// after ttl without reads or writes. When a repository is set it is the store of
// record; otherwise entries live in process memory and Run sweeps them.
type ScrapeCache struct {
	repo    ScrapeCacheRepository
	metrics cacheMetrics
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewScrapeCache constructs the cache. repo may be nil.
func NewScrapeCache(repo ScrapeCacheRepository, metrics cacheMetrics, ttl time.Duration, logger *zap.Logger) *ScrapeCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapeCache{
		repo:    repo,
		metrics: metrics,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

// Get returns the session's scrape context, or nil when there is none. Store
// failures are logged and reported as a miss.
func (c *ScrapeCache) Get(ctx context.Context, sessionID string) *models.ScrapeContext {
	sc := c.lookup(ctx, sessionID)
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(sc != nil)
	}
	return sc
}

func (c *ScrapeCache) lookup(ctx context.Context, sessionID string) *models.ScrapeContext {
	if sessionID == "" {
		return nil
	}
	if c.repo != nil {
		sc, err := c.repo.Get(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, appErrors.ErrCacheMiss) {
				c.logger.Warn("scrape cache get failed", zap.String("session_id", sessionID), zap.Error(err))
			}
			return nil
		}
		return sc
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[sessionID]
	if !ok {
		return nil
	}
	now := c.now()
	if now.Sub(entry.lastAccess) > c.ttl {
		delete(c.entries, sessionID)
		return nil
	}
	entry.lastAccess = now
	value := entry.value
	return &value
}

// Put overwrites the session's scrape context.
func (c *ScrapeCache) Put(ctx context.Context, sc models.ScrapeContext) {
	if sc.SessionID == "" {
		return
	}
	if c.repo != nil {
		if err := c.repo.Put(ctx, &sc); err != nil {
			c.logger.Warn("scrape cache put failed", zap.String("session_id", sc.SessionID), zap.Error(err))
		}
		return
	}

	c.mu.Lock()
	c.entries[sc.SessionID] = &memoryEntry{value: sc, lastAccess: c.now()}
	c.mu.Unlock()
}

// Sweep drops idle in-memory entries and returns how many were removed.
func (c *ScrapeCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for id, entry := range c.entries {
		if now.Sub(entry.lastAccess) > c.ttl {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle entries until ctx is cancelled. It returns immediately when a
// repository handles expiry.
func (c *ScrapeCache) Run(ctx context.Context, interval time.Duration) error {
	if c.repo != nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debug("scrape cache swept", zap.Int("removed", n))
			}
		}
	}
}
