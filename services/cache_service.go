package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"syntech_importer/config"
	"syntech_importer/structs"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

const (
	categoryKeyPrefix = "catcache:"
	runActiveKey      = "import:running"
	runSummaryKey     = "import:last_summary"
)

// CacheService provides Redis caching for resolved category ids and import
// run state. Every operation fails open: a cache error degrades to a store
// lookup, never to a failed record.
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
}

func NewCacheService(logger *gecho.Logger, cfg *structs.Config) *CacheService {
	return &CacheService{
		logger: logger,
		config: cfg,
		client: getRedisClient(),
	}
}

// getRedisClient returns a singleton Redis client with proper connection pooling
func getRedisClient() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.GetConfig()
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Address,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,

			PoolSize:     cfg.Cache.PoolSize,
			MinIdleConns: cfg.Cache.MinIdleConns,

			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,

			MaxRetries: cfg.Cache.MaxRetries,
		})
	})
	return redisClient
}

// Close closes the Redis connection pool
func (cs *CacheService) Close() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}

// Ping checks cache connectivity
func (cs *CacheService) Ping(ctx context.Context) error {
	return cs.client.Ping(ctx).Err()
}

// categoryKey keys on the exact name: sibling nodes differing only in case
// are distinct categories and must not share a cache entry.
func categoryKey(name string, parentID *uuid.UUID) string {
	parent := "root"
	if parentID != nil {
		parent = parentID.String()
	}
	return categoryKeyPrefix + parent + ":" + name
}

// GetCategoryID returns a cached category id for a (name, parent) pair.
func (cs *CacheService) GetCategoryID(ctx context.Context, name string, parentID *uuid.UUID) (uuid.UUID, bool) {
	val, err := cs.client.Get(ctx, categoryKey(name, parentID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			cs.logger.Debug("Category cache read failed", gecho.Field("error", err))
		}
		return uuid.Nil, false
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// SetCategoryID caches a resolved category id for a (name, parent) pair.
func (cs *CacheService) SetCategoryID(ctx context.Context, name string, parentID *uuid.UUID, id uuid.UUID) {
	err := cs.client.Set(ctx, categoryKey(name, parentID), id.String(), cs.config.Cache.CategoryTTL).Err()
	if err != nil {
		cs.logger.Debug("Category cache write failed", gecho.Field("error", err))
	}
}

// SetRunActive records whether an import run is currently executing.
func (cs *CacheService) SetRunActive(ctx context.Context, active bool) {
	var err error
	if active {
		err = cs.client.Set(ctx, runActiveKey, "1", 0).Err()
	} else {
		err = cs.client.Del(ctx, runActiveKey).Err()
	}
	if err != nil {
		cs.logger.Warn("Failed to update run-active flag", gecho.Field("error", err))
	}
}

// IsRunActive reports whether a run is flagged active in the cache.
func (cs *CacheService) IsRunActive(ctx context.Context) bool {
	val, err := cs.client.Exists(ctx, runActiveKey).Result()
	if err != nil {
		cs.logger.Debug("Failed to read run-active flag", gecho.Field("error", err))
		return false
	}
	return val > 0
}

// StoreRunSummary persists the latest run summary for the status endpoint.
func (cs *CacheService) StoreRunSummary(ctx context.Context, summary *structs.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if err := cs.client.Set(ctx, runSummaryKey, payload, 0).Err(); err != nil {
		cs.logger.Warn("Failed to store run summary", gecho.Field("error", err))
		return err
	}
	return nil
}

// GetRunSummary returns the last stored run summary, or nil when none exists.
func (cs *CacheService) GetRunSummary(ctx context.Context) (*structs.RunSummary, error) {
	val, err := cs.client.Get(ctx, runSummaryKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var summary structs.RunSummary
	if err := json.Unmarshal(val, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run summary: %w", err)
	}
	return &summary, nil
}
