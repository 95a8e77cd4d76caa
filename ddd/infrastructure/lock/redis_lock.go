package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"video-pipeline-service/ddd/domain/gateway"
)

// releaseScript deletes the lock only when the caller still holds it, so a
// run that outlived its TTL cannot release a successor's lock.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type redisAssetLocker struct {
	client *redis.Client
}

// NewRedisAssetLocker builds the production per-asset locker on Redis.
func NewRedisAssetLocker(client *redis.Client) gateway.AssetLocker {
	return &redisAssetLocker{client: client}
}

func lockKey(assetUUID string) string {
	return "video:pipeline:lock:" + assetUUID
}

func (l *redisAssetLocker) TryLock(ctx context.Context, assetUUID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKey(assetUUID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire asset lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *redisAssetLocker) Unlock(ctx context.Context, assetUUID, token string) error {
	res, err := l.client.Eval(ctx, releaseScript, []string{lockKey(assetUUID)}, token).Result()
	if err != nil {
		return fmt.Errorf("release asset lock: %w", err)
	}
	if n, ok := res.(int64); ok && n == 0 {
		return fmt.Errorf("asset lock not held asset_uuid=%s", assetUUID)
	}
	return nil
}
