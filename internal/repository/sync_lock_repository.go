package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const syncLockPrefix = "sync:lock:"

// SyncLockRepository guards a table against concurrent sync runs. It uses
// Redis SETNX when a client is configured and a process-local map otherwise.
type SyncLockRepository struct {
	client *redis.Client

	mu    sync.Mutex
	local map[string]string
}

// NewSyncLockRepository constructs the lock store. client may be nil.
func NewSyncLockRepository(client *redis.Client) *SyncLockRepository {
	return &SyncLockRepository{client: client, local: make(map[string]string)}
}

// Acquire takes the lock for table on behalf of owner. It returns false when another owner holds it.
func (r *SyncLockRepository) Acquire(ctx context.Context, table, owner string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if holder, ok := r.local[table]; ok && holder != owner {
			return false, nil
		}
		r.local[table] = owner
		return true, nil
	}

	ok, err := r.client.SetNX(ctx, syncLockPrefix+table, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", table, err)
	}
	if ok {
		return true, nil
	}
	holder, err := r.client.Get(ctx, syncLockPrefix+table).Result()
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("redis get %s: %w", table, err)
	}
	return holder == owner, nil
}

// Release drops the lock if owner still holds it.
func (r *SyncLockRepository) Release(ctx context.Context, table, owner string) error {
	if r.client == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.local[table] == owner {
			delete(r.local, table)
		}
		return nil
	}

	holder, err := r.client.Get(ctx, syncLockPrefix+table).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", table, err)
	}
	if holder != owner {
		return nil
	}
	if err := r.client.Del(ctx, syncLockPrefix+table).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", table, err)
	}
	return nil
}
