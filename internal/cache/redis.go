package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"todo-bills/internal/config"
	"todo-bills/pkg/logger"
)

var (
	client *redis.Client
	once   sync.Once
)

// Client returns the global Redis client (initialized on first use). It is
// nil when REDIS_URL is empty or the server is unreachable at startup.
func Client(ctx context.Context) *redis.Client {
	once.Do(func() {
		cfg := config.Get()
		if cfg.RedisURL == "" {
			logger.Info(ctx, "Redis disabled (REDIS_URL empty)")
			return
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error(ctx, "Invalid REDIS_URL", "error", err)
			return
		}
		opts.PoolSize = cfg.RedisPoolSize
		c := redis.NewClient(opts)
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Error(ctx, "Redis ping failed", "error", err)
			_ = c.Close()
			return
		}
		client = c
		logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	})
	return client
}

// Lists caches the JSON-encoded record list of one owner per kind. A Lists
// with a nil client is a valid no-op cache; every failure is a miss.
//
// Each list has a generation counter that Invalidate bumps. A reader takes
// the generation before loading from the store and Set only stores when it
// is unchanged, so a load that raced a mutation is never written back.
type Lists struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLists returns a list cache over c.
func NewLists(c *redis.Client, ttl time.Duration) *Lists {
	return &Lists{client: c, ttl: ttl}
}

// Key is the Redis key of an owner's list, e.g. "todos:<owner>".
func Key(kind, ownerID string) string {
	return kind + "s:" + ownerID
}

// GenKey is the Redis key of the list's generation counter, e.g. "gen:todos:<owner>".
func GenKey(kind, ownerID string) string {
	return "gen:" + Key(kind, ownerID)
}

func (l *Lists) enabled() bool { return l != nil && l.client != nil }

// Get returns the cached list bytes. Returns (nil, false) on miss or error.
func (l *Lists) Get(ctx context.Context, kind, ownerID string) ([]byte, bool) {
	if !l.enabled() {
		return nil, false
	}
	b, err := l.client.Get(ctx, Key(kind, ownerID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get list failed", "error", err, "kind", kind)
		return nil, false
	}
	return b, true
}

// Version returns the list's current generation. ok is false when the cache
// is disabled or unreachable; callers then skip Set.
func (l *Lists) Version(ctx context.Context, kind, ownerID string) (gen int64, ok bool) {
	if !l.enabled() {
		return 0, false
	}
	gen, err := l.client.Get(ctx, GenKey(kind, ownerID)).Int64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		logger.Debug(ctx, "Redis get generation failed", "error", err, "kind", kind)
		return 0, false
	}
	return gen, true
}

var errStaleGeneration = errors.New("list generation moved")

// Set stores the list bytes with the configured TTL if the generation still
// equals gen. It reports whether the list was stored.
func (l *Lists) Set(ctx context.Context, kind, ownerID string, gen int64, b []byte) bool {
	if !l.enabled() {
		return false
	}
	genKey := GenKey(kind, ownerID)
	err := l.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, Key(kind, ownerID), b, l.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		logger.Debug(ctx, "Redis set list skipped: invalidated while loading", "kind", kind)
	default:
		logger.Debug(ctx, "Redis set list failed", "error", err, "kind", kind)
	}
	return false
}

// Invalidate drops the owner's list and bumps its generation so in-flight
// loads started earlier cannot store their result.
func (l *Lists) Invalidate(ctx context.Context, kind, ownerID string) {
	if !l.enabled() {
		return
	}
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, Key(kind, ownerID))
		p.Incr(ctx, GenKey(kind, ownerID))
		return nil
	})
	if err != nil {
		logger.Warn(ctx, "Redis invalidate list failed", "error", err, "kind", kind)
	}
}

// Ping reports whether Redis answers. A disabled cache is always healthy.
func (l *Lists) Ping(ctx context.Context) error {
	if !l.enabled() {
		return nil
	}
	return l.client.Ping(ctx).Err()
}
