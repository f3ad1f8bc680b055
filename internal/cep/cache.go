package cep

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// notFoundMarker is cached for CEPs the service does not know so repeated
// keystrokes on a bad code do not hit the network again.
const notFoundMarker = "-"

// Outcome labels reported to the observer.
const (
	OutcomeHit      = "hit"
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Cache wraps a Lookup with a Redis read-through cache. Concurrent lookups
// for the same CEP share one upstream call, which outlives any single
// caller's context and is bounded by the wrapped client's timeout.
type Cache struct {
	next     Lookup
	redis    *redis.Client
	ttl      time.Duration
	group    singleflight.Group
	logger   *slog.Logger
	observer func(outcome string)
}

// NewCache constructs a Cache. A nil redis client disables storage but keeps
// request de-duplication.
func NewCache(next Lookup, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{next: next, redis: client, ttl: ttl, logger: logger}
}

// OnOutcome installs a metrics hook.
func (c *Cache) OnOutcome(fn func(outcome string)) {
	c.observer = fn
}

// Lookup implements Lookup.
func (c *Cache) Lookup(ctx context.Context, raw string) (Address, error) {
	digits, err := Normalize(raw)
	if err != nil {
		return Address{}, err
	}
	if addr, err, ok := c.load(ctx, digits); ok {
		c.report(OutcomeHit)
		return addr, err
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(digits, func() (any, error) {
		addr, err := c.next.Lookup(shared, digits)
		switch {
		case err == nil:
			c.store(shared, digits, &addr)
		case errors.Is(err, ErrNotFound):
			c.store(shared, digits, nil)
		}
		return addr, err
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return Address{}, ctx.Err()
	}
	v, err := res.Val, res.Err
	switch {
	case err == nil:
		c.report(OutcomeFound)
	case errors.Is(err, ErrNotFound):
		c.report(OutcomeNotFound)
	default:
		c.report(OutcomeError)
	}
	addr, _ := v.(Address)
	return addr, err
}

func (c *Cache) key(digits string) string {
	return "cep:" + digits
}

func (c *Cache) load(ctx context.Context, digits string) (Address, error, bool) {
	if c.redis == nil {
		return Address{}, nil, false
	}
	raw, err := c.redis.Get(ctx, c.key(digits)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cep cache read", slog.Any("error", err))
		}
		return Address{}, nil, false
	}
	if string(raw) == notFoundMarker {
		return Address{}, ErrNotFound, true
	}
	var addr Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		return Address{}, nil, false
	}
	return addr, nil, true
}

func (c *Cache) store(ctx context.Context, digits string, addr *Address) {
	if c.redis == nil || c.ttl <= 0 {
		return
	}
	value := []byte(notFoundMarker)
	if addr != nil {
		data, err := json.Marshal(addr)
		if err != nil {
			return
		}
		value = data
	}
	if err := c.redis.Set(ctx, c.key(digits), value, c.ttl).Err(); err != nil {
		c.logger.Warn("cep cache write", slog.Any("error", err))
	}
}

func (c *Cache) report(outcome string) {
	if c.observer != nil {
		c.observer(outcome)
	}
}
