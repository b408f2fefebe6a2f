package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/domain"
)

// releaseScript deletes the lock only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CompletionGuard is a Redis lock shared by every instance: SET key token NX PX ttl.
// The TTL bounds how long a crashed holder can block a user.
type CompletionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCompletionGuard(client *redis.Client, ttl time.Duration) *CompletionGuard {
	return &CompletionGuard{client: client, ttl: ttl}
}

func (g *CompletionGuard) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.key(key), token, g.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrCompletionInProgress
	}
	return func() {
		// Detached from the request so a cancelled client still frees the lock.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, g.client, []string{g.key(key)}, token).Err(); err != nil {
			config.WithContext(ctx).WithError(err).Warn("completion guard release failed")
		}
	}, nil
}

func (g *CompletionGuard) key(key string) string {
	return "mcq:complete:" + key
}
