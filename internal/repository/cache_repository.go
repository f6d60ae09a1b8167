package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

const scrapeKeyPrefix = "chat:scrape:"

// ScrapeCacheRepository stores each chat session's last scraped page in Redis. Reads
// slide the TTL so entries expire after a period of inactivity.
type ScrapeCacheRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewScrapeCacheRepository constructs the repository. A nil client makes every
// lookup a miss.
func NewScrapeCacheRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ScrapeCacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ScrapeCacheRepository{client: client, ttl: ttl, logger: logger}
}

func scrapeKey(sessionID string) string {
	return scrapeKeyPrefix + sessionID
}

// Get loads the session's scrape context and refreshes its expiry.
func (r *ScrapeCacheRepository) Get(ctx context.Context, sessionID string) (*models.ScrapeContext, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	key := scrapeKey(sessionID)
	raw, err := r.client.GetEx(ctx, key, r.ttl).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis getex %s: %w", key, err)
	}

	var sc models.ScrapeContext
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("unmarshal scrape context for %s: %w", key, err)
	}
	return &sc, nil
}

// Put overwrites the session's scrape context.
func (r *ScrapeCacheRepository) Put(ctx context.Context, sc *models.ScrapeContext) error {
	if r.client == nil {
		return nil
	}

	key := scrapeKey(sc.SessionID)
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal scrape context for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
