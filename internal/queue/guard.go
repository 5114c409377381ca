package queue

import (
	"context"
	"sync"
	"time"

	"github.com/unclebandit/wealthyelephant-backend/internal/cache"
)

const (
	DefaultGuardTTL    = 2 * time.Hour
	DefaultGuardPrefix = "campaign:sending:"
)

// InFlightGuard admits at most one send per campaign at a time.
type InFlightGuard interface {
	Acquire(ctx context.Context, campaignID string) (bool, error)
	Release(ctx context.Context, campaignID string) error
	// Held reports whether a send currently holds the campaign.
	Held(ctx context.Context, campaignID string) (bool, error)
}

type MemoryGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{inFlight: map[string]struct{}{}}
}

func (g *MemoryGuard) Acquire(_ context.Context, campaignID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inFlight[campaignID]; ok {
		return false, nil
	}
	g.inFlight[campaignID] = struct{}{}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, campaignID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, campaignID)
	return nil
}

func (g *MemoryGuard) Held(_ context.Context, campaignID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inFlight[campaignID]
	return ok, nil
}

// RedisGuard shares the guard between the API and worker processes. The TTL
// frees a campaign whose worker died mid-send.
type RedisGuard struct {
	Cache  *cache.Client
	TTL    time.Duration
	Prefix string
}

func NewRedisGuard(c *cache.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &RedisGuard{Cache: c, TTL: ttl, Prefix: DefaultGuardPrefix}
}

func (g *RedisGuard) Acquire(ctx context.Context, campaignID string) (bool, error) {
	return g.Cache.SetNX(ctx, g.Prefix+campaignID, time.Now().UTC().Format(time.RFC3339), g.TTL)
}

func (g *RedisGuard) Release(ctx context.Context, campaignID string) error {
	return g.Cache.Delete(ctx, g.Prefix+campaignID)
}

func (g *RedisGuard) Held(ctx context.Context, campaignID string) (bool, error) {
	return g.Cache.Exists(ctx, g.Prefix+campaignID)
}

var (
	_ InFlightGuard = (*MemoryGuard)(nil)
	_ InFlightGuard = (*RedisGuard)(nil)
)
