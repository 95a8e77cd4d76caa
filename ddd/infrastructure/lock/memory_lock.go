package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"video-pipeline-service/ddd/domain/gateway"
)

type memoryLockEntry struct {
	token    string
	deadline time.Time
}

// memoryAssetLocker is a single-process locker for tests and setups without
// Redis. TTLs expire lazily on the next acquisition attempt.
type memoryAssetLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLockEntry
}

func NewMemoryAssetLocker() gateway.AssetLocker {
	return &memoryAssetLocker{locks: make(map[string]memoryLockEntry)}
}

func (l *memoryAssetLocker) TryLock(ctx context.Context, assetUUID string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if entry, held := l.locks[assetUUID]; held && now.Before(entry.deadline) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.locks[assetUUID] = memoryLockEntry{token: token, deadline: now.Add(ttl)}
	return token, true, nil
}

func (l *memoryAssetLocker) Unlock(ctx context.Context, assetUUID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, held := l.locks[assetUUID]
	if !held || entry.token != token {
		return fmt.Errorf("asset lock not held asset_uuid=%s", assetUUID)
	}
	delete(l.locks, assetUUID)
	return nil
}
