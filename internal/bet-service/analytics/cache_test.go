package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
)

// fakeRedis guarda valores em map e devolve os *Cmd prontos
type fakeRedis struct {
	data    map[string]string
	lastTTL time.Duration
}

func newFakeRedis() *fakeRedis { return &fakeRedis{data: map[string]string{}} }

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	f.lastTTL = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	r := newFakeRedis()
	c := NewRedisCache(r, 30*time.Second)
	ctx := context.Background()

	if _, ok, err := c.GetSummary(ctx); ok || err != nil {
		t.Fatalf("empty cache ok=%v err=%v", ok, err)
	}

	want := domain.NewSummary(domain.Tally{Total: 3, Wins: 2, Losses: 1}, domain.Tally{Total: 1})
	if err := c.SetSummary(ctx, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	if r.lastTTL != 30*time.Second {
		t.Fatalf("ttl=%v", r.lastTTL)
	}

	got, ok, err := c.GetSummary(ctx)
	if err != nil || !ok {
		t.Fatalf("get ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got=%+v want %+v", got, want)
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := c.GetSummary(ctx); ok {
		t.Fatalf("summary still cached after invalidate")
	}
}

func TestRedisCacheCorruptValue(t *testing.T) {
	r := newFakeRedis()
	r.data[keySummary] = "{not json"
	if _, _, err := NewRedisCache(r, time.Minute).GetSummary(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}
