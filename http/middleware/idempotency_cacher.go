package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	idemResTTL       = 24 * time.Hour
	idemResKeyPrefix = "trailhead:idempotency:"
)

var (
	_ IdempotencyCacher = NewIdemResMap()
	_ IdempotencyCacher = IdemResRedis{}
)

// An IdempotencyCacher can store responses paired to idempotency keys.
//
// Claim stores idemRes under key only when key is absent,
// reporting whether it did so.
// When it did not, Claim returns the IdemRes already paired to key.
type IdempotencyCacher interface {
	Claim(ctx context.Context, key string, idemRes IdemRes) (IdemRes, bool)
	Delete(ctx context.Context, key string)
	Get(ctx context.Context, key string) (IdemRes, bool)
	Set(ctx context.Context, key string, idemRes IdemRes)
}

// An IdemResMap stores idempotency key, IdemRes value pairs in a map.
//
// Server restarts reset this map.
// An IdemResMap ought not be used when running more than one server.
type IdemResMap struct {
	vals map[string]idemResMapVal
	mu   sync.Mutex
}

// NewIdemResMap constructs an *IdemResMap
// for use in an Idempotent middleware as a cache.
func NewIdemResMap() *IdemResMap { return &IdemResMap{vals: make(map[string]idemResMapVal)} }

// An idemResMapVal is stored in an IdemResMap,
// wrapping an IdemRes.
type idemResMapVal struct {
	IdemRes

	at time.Time
}

// Get retrieves the result of the request matching the idempotency key
// much like a regular map.
func (i *IdemResMap) Get(ctx context.Context, key string) (IdemRes, bool) {
	if key == "" {
		return IdemRes{}, false
	}

	select {
	case <-ctx.Done():
		return IdemRes{}, false
	default:
		i.mu.Lock()
		defer i.mu.Unlock()

		v, ok := i.vals[key]
		if !ok || time.Since(v.at) > idemResTTL {
			return IdemRes{}, false
		}

		return v.IdemRes, true
	}
}

// Claim pairs idemRes to key unless an unexpired value already is.
func (i *IdemResMap) Claim(ctx context.Context, key string, idemRes IdemRes) (IdemRes, bool) {
	select {
	case <-ctx.Done():
		return IdemRes{}, false
	default:
		i.mu.Lock()
		defer i.mu.Unlock()

		if v, ok := i.vals[key]; ok && time.Since(v.at) <= idemResTTL {
			return v.IdemRes, false
		}

		i.evict()
		i.vals[key] = idemResMapVal{IdemRes: idemRes, at: time.Now()}
		return idemRes, true
	}
}

// Delete removes key from the map.
func (i *IdemResMap) Delete(ctx context.Context, key string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.vals, key)
}

// Set overwrites the value paired to key in the map.
//
// For each call to Set, keys older than 24 hours are evicted.
func (i *IdemResMap) Set(ctx context.Context, key string, idemRes IdemRes) {
	select {
	case <-ctx.Done():
		return
	default:
		i.mu.Lock()
		defer i.mu.Unlock()

		i.evict()
		i.vals[key] = idemResMapVal{IdemRes: idemRes, at: time.Now()}
	}
}

// evict drops keys older than idemResTTL; callers hold i.mu.
func (i *IdemResMap) evict() {
	for k, v := range i.vals {
		if time.Since(v.at) > idemResTTL {
			delete(i.vals, k)
		}
	}
}

// An IdemResRedis connects to a Redis backend
// for the purposes of caching idempotent responses.
type IdemResRedis struct {
	client redis.Cmdable
}

// NewRedisCacheFromClient constructs an IdemResRedis sharing client.
func NewRedisCacheFromClient(client redis.Cmdable) IdemResRedis {
	return IdemResRedis{client: client}
}

// Get retrieves the IdemRes paired to key from the connected Redis backend.
func (i IdemResRedis) Get(ctx context.Context, key string) (IdemRes, bool) {
	select {
	case <-ctx.Done():
		return IdemRes{}, false
	default:
		b, err := i.client.Get(ctx, idemResKeyPrefix+key).Bytes()
		if err != nil {
			return IdemRes{}, false
		}

		ir := new(IdemRes)
		if err := ir.GobDecode(b); err != nil {
			return IdemRes{}, false
		}

		return *ir, true
	}
}

// Claim pairs idemRes to key with SETNX,
// falling back to the stored IdemRes when key is already taken.
// Claim reports a claim it could not record in Redis as made.
//
// A key taken by a value that cannot be read back
// is reported as in-flight.
func (i IdemResRedis) Claim(ctx context.Context, key string, idemRes IdemRes) (IdemRes, bool) {
	select {
	case <-ctx.Done():
		return IdemRes{}, false
	default:
		b, err := idemRes.GobEncode()
		if err != nil {
			return idemRes, true
		}

		// NOTE(dlk): with Redis unreachable, requests run as if no key was sent
		ok, err := i.client.SetNX(ctx, idemResKeyPrefix+key, b, idemResTTL).Result()
		if err != nil {
			return idemRes, true
		}

		if ok {
			return idemRes, true
		}

		existing, _ := i.Get(ctx, key)
		return existing, false
	}
}

// Delete removes key from the Redis backend.
func (i IdemResRedis) Delete(ctx context.Context, key string) {
	i.client.Del(ctx, idemResKeyPrefix+key)
}

// Set saves the IdemRes by pairing it to the key in the Redis backend.
func (i IdemResRedis) Set(ctx context.Context, key string, idemRes IdemRes) {
	select {
	case <-ctx.Done():
		return
	default:
		b, err := idemRes.GobEncode()
		if err != nil {
			return
		}

		i.client.Set(ctx, idemResKeyPrefix+key, b, idemResTTL)
	}
}
