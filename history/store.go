//go:generate mockgen -destination=historytest/mock_store.go -package=historytest . Store

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/xy-planning-network/trailhead"
)

const (
	// DefaultTTL is how long an untouched Stack is kept.
	DefaultTTL = 24 * time.Hour

	redisKeyPrefix = "trailhead:history:"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = RedisStore{}
)

// A Store persists the Stack of each visitor, identified by id.
//
// Load returns an empty Stack for an id it has never seen.
type Store interface {
	Load(ctx context.Context, id string) (*Stack, error)
	Save(ctx context.Context, id string, s *Stack) error
}

// A MemoryStore keeps Stacks in a map.
//
// Restarting the server resets a MemoryStore,
// so it ought not be used for production environments.
type MemoryStore struct {
	ttl  time.Duration
	vals map[string]memoryVal
	sync.Mutex
}

type memoryVal struct {
	stack *Stack
	at    time.Time
}

// NewMemoryStore constructs a *MemoryStore keeping Stacks for ttl since their last Save.
// A ttl of zero or less uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MemoryStore{ttl: ttl, vals: make(map[string]memoryVal)}
}

// Load retrieves a copy of the Stack saved for id.
func (m *MemoryStore) Load(ctx context.Context, id string) (*Stack, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id", trailhead.ErrMissingData)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		m.Lock()
		defer m.Unlock()

		v, ok := m.vals[id]
		if !ok || time.Since(v.at) > m.ttl {
			return new(Stack), nil
		}

		return v.stack.Clone(), nil
	}
}

// Save stores a copy of s for id.
//
// For each call to Save, Stacks older than the ttl are evicted.
func (m *MemoryStore) Save(ctx context.Context, id string, s *Stack) error {
	if id == "" {
		return fmt.Errorf("%w: id", trailhead.ErrMissingData)
	}

	if s == nil {
		return fmt.Errorf("%w: stack", trailhead.ErrMissingData)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		m.Lock()
		defer m.Unlock()

		cutoff := time.Now().Add(-m.ttl)
		for k, v := range m.vals {
			if v.at.Before(cutoff) {
				delete(m.vals, k)
			}
		}

		m.vals[id] = memoryVal{stack: s.Clone(), at: time.Now()}
		return nil
	}
}

// A RedisStore connects to a Redis backend
// for the purposes of sharing Stacks between app instances.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStoreFromClient constructs a RedisStore around an existing client.
// A ttl of zero or less uses DefaultTTL.
func NewRedisStoreFromClient(client redis.Cmdable, ttl time.Duration) RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return RedisStore{client: client, ttl: ttl}
}

// Load retrieves the Stack paired to id from the connected Redis backend.
func (rs RedisStore) Load(ctx context.Context, id string) (*Stack, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id", trailhead.ErrMissingData)
	}

	b, err := rs.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return new(Stack), nil
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load history %s: %w", id, err)
	}

	s := new(Stack)
	if err := json.Unmarshal(b, s); err != nil || !s.Valid() {
		return new(Stack), nil
	}

	return s, nil
}

// Save pairs s to id in the Redis backend, refreshing its expiry.
func (rs RedisStore) Save(ctx context.Context, id string, s *Stack) error {
	if id == "" {
		return fmt.Errorf("%w: id", trailhead.ErrMissingData)
	}

	if s == nil {
		return fmt.Errorf("%w: stack", trailhead.ErrMissingData)
	}

	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("unable to encode history %s: %w", id, err)
	}

	if err := rs.client.Set(ctx, redisKey(id), b, rs.ttl).Err(); err != nil {
		return fmt.Errorf("unable to save history %s: %w", id, err)
	}

	return nil
}

func redisKey(id string) string { return redisKeyPrefix + id }
