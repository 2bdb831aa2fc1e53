package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"apkrisk/internal/config"
	"apkrisk/internal/domain/models"
	"apkrisk/pkg/logger"
)

// ErrMiss is returned when no assessment is cached for a digest.
var ErrMiss = errors.New("cache miss")

// AssessmentCache stores finished assessments keyed by a digest of the job
// input. Identical inputs produce identical assessments, so serving from
// cache never alters the observable result.
type AssessmentCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *logger.Logger
}

// NewRedis connects to Redis and returns an assessment cache.
func NewRedis(ctx context.Context, cfg config.RedisConfig, ttl time.Duration, log *logger.Logger) (*AssessmentCache, error) {
	log = log.WithComponent("cache")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &AssessmentCache{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       ttl,
		logger:    log,
	}, nil
}

// Close closes the Redis connection.
func (c *AssessmentCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// JobDigest derives the cache key for a job from its canonical JSON
// encoding. Marshaling is deterministic for the job input types (maps are
// key-sorted by encoding/json), so identical inputs share a digest.
func JobDigest(input any) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode job input: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Get returns the cached assessment for a digest, or ErrMiss.
func (c *AssessmentCache) Get(ctx context.Context, digest string) (*models.RiskAssessment, error) {
	data, err := c.client.Get(ctx, c.key(digest)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}

	var assessment models.RiskAssessment
	if err := json.Unmarshal([]byte(data), &assessment); err != nil {
		return nil, fmt.Errorf("failed to decode cached assessment: %w", err)
	}
	return &assessment, nil
}

// Put stores an assessment under its input digest.
func (c *AssessmentCache) Put(ctx context.Context, digest string, assessment *models.RiskAssessment) error {
	data, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}
	return c.client.Set(ctx, c.key(digest), data, c.ttl).Err()
}

// Ping reports cache reachability for readiness checks.
func (c *AssessmentCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// key prepends the namespace prefix to a digest.
func (c *AssessmentCache) key(digest string) string {
	return c.keyPrefix + "assessment:" + digest
}
