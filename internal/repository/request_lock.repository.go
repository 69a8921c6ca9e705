package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRequestLockTTL = 24 * time.Hour

var releaseRequestLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// RequestLockRepository claims idempotency keys so a replayed request is
// rejected instead of processed twice.
type RequestLockRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewRequestLockRepository(client redis.UniversalClient, prefix string) *RequestLockRepository {
	return &RequestLockRepository{client: client, prefix: prefix}
}

func (r *RequestLockRepository) Acquire(ctx context.Context, scope, key, owner string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = defaultRequestLockTTL
	}

	acquired, err := r.client.SetNX(ctx, r.lockKey(scope, key), owner, ttl).Result()
	if err != nil {
		return false, err
	}

	return acquired, nil
}

// Release drops the claim only while owner still holds it.
func (r *RequestLockRepository) Release(ctx context.Context, scope, key, owner string) error {
	_, err := releaseRequestLockScript.Run(ctx, r.client, []string{r.lockKey(scope, key)}, owner).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	return nil
}

func (r *RequestLockRepository) lockKey(scope, key string) string {
	return fmt.Sprintf("%s:idempotency:%s:%s", r.prefix, scope, key)
}
