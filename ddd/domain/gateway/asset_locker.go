package gateway

import (
	"context"
	"time"
)

// AssetLocker serializes pipeline runs per asset. Only the holder of the
// returned token may release the lock.
type AssetLocker interface {
	// TryLock acquires the asset lock without blocking. ok is false when
	// another run holds it.
	TryLock(ctx context.Context, assetUUID string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, assetUUID, token string) error
}
