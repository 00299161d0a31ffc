package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
)

const keySummary = "bets:summary"

// store é o subconjunto do *redis.Client usado aqui
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache guarda o último resumo calculado. Toda mutação de aposta
// chama Invalidate, então o TTL só limita o impacto de uma invalidação perdida.
type RedisCache struct {
	r   store
	ttl time.Duration
}

func NewRedisCache(r store, ttl time.Duration) *RedisCache {
	return &RedisCache{r: r, ttl: ttl}
}

// GetSummary retorna (resumo, true) em hit; miss não é erro
func (c *RedisCache) GetSummary(ctx context.Context) (domain.Summary, bool, error) {
	b, err := c.r.Get(ctx, keySummary).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Summary{}, false, nil
	}
	if err != nil {
		return domain.Summary{}, false, fmt.Errorf("redis get summary: %w", err)
	}
	var s domain.Summary
	if err := json.Unmarshal(b, &s); err != nil {
		return domain.Summary{}, false, fmt.Errorf("decode cached summary: %w", err)
	}
	return s, true, nil
}

func (c *RedisCache) SetSummary(ctx context.Context, s domain.Summary) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := c.r.Set(ctx, keySummary, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set summary: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.r.Del(ctx, keySummary).Err(); err != nil {
		return fmt.Errorf("redis del summary: %w", err)
	}
	return nil
}

// Noop é usado quando REDIS_ADDR está vazio: sempre miss
type Noop struct{}

func (Noop) GetSummary(context.Context) (domain.Summary, bool, error) {
	return domain.Summary{}, false, nil
}
func (Noop) SetSummary(context.Context, domain.Summary) error { return nil }
func (Noop) Invalidate(context.Context) error { return nil }
