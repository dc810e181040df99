package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stockpulse/invsync/internal/domain/integration"
)

const syncLockPrefix = "invsync:sync-lock:"

// releaseScript deletes the lock only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSyncLocker holds per-store locks in Redis with an expiry, so a crashed
// process cannot block a store forever.
type RedisSyncLocker struct {
	client redis.UniversalClient
}

// NewRedisSyncLocker creates a locker on client
func NewRedisSyncLocker(client redis.UniversalClient) *RedisSyncLocker {
	return &RedisSyncLocker{client: client}
}

// TryLock sets the lock key with SET NX PX and a random token
func (l *RedisSyncLocker) TryLock(ctx context.Context, storeIntegrationID uint64, ttl time.Duration) (func(), bool, error) {
	key := syncLockPrefix + strconv.FormatUint(storeIntegrationID, 10)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire sync lock for store %d: %w", storeIntegrationID, err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(rctx, l.client, []string{key}, token).Err()
		})
	}
	return release, true, nil
}

// InMemorySyncLocker is a keyed try-lock for single-process deployments.
// The ttl is ignored; locks live until released.
type InMemorySyncLocker struct {
	mu   sync.Mutex
	held map[uint64]struct{}
}

// NewInMemorySyncLocker creates an empty locker
func NewInMemorySyncLocker() *InMemorySyncLocker {
	return &InMemorySyncLocker{held: make(map[uint64]struct{})}
}

// TryLock marks the store as busy if it is free
func (l *InMemorySyncLocker) TryLock(_ context.Context, storeIntegrationID uint64, _ time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[storeIntegrationID]; busy {
		return nil, false, nil
	}
	l.held[storeIntegrationID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, storeIntegrationID)
			l.mu.Unlock()
		})
	}, true, nil
}

var (
	_ integration.SyncLocker = (*RedisSyncLocker)(nil)
	_ integration.SyncLocker = (*InMemorySyncLocker)(nil)
)
