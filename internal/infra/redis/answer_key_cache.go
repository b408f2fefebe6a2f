package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"mcq-assessment-service/internal/app"
	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/domain"
)

// storeIfCurrent writes a loaded key only while the question's generation is still the
// one observed before loading. Invalidate bumps the generation.
var storeIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

// AnswerKeyCache caches answer keys in Redis and falls back to a loader on cache miss.
// Keys are stored as JSON strings: SET mcq:{questionID}:key {answerKey} PX ttl
// Each question also has a generation counter at mcq:{questionID}:gen.
type AnswerKeyCache struct {
	client *redis.Client
	loader app.AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, loader app.AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) AnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	if key, ok := c.cached(ctx, questionID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(questionID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if key, ok := c.cached(ctx, questionID); ok {
			return key, nil
		}

		// Shared by every waiter, so one caller going away must not fail the rest.
		loadCtx := context.WithoutCancel(ctx)
		gen, err := c.client.Get(loadCtx, c.genKey(questionID)).Result()
		if errors.Is(err, redis.Nil) {
			gen = "0"
		} else if err != nil {
			return domain.AnswerKey{}, err
		}

		key, err := c.loader.LoadAnswerKey(loadCtx, questionID)
		if err != nil {
			return domain.AnswerKey{}, err
		}

		data, err := json.Marshal(key)
		if err != nil {
			return domain.AnswerKey{}, err
		}
		keys := []string{c.key(questionID), c.genKey(questionID)}
		if err := storeIfCurrent.Run(loadCtx, c.client, keys, gen, data, c.ttlWithJitter().Milliseconds()).Err(); err != nil {
			config.WithContext(ctx).WithError(err).WithField("question_id", questionID).Warn("answer key cache write failed")
		}
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

// Invalidate drops the cached key and bumps the generation so loads already in flight
// do not write their result back.
func (c *AnswerKeyCache) Invalidate(ctx context.Context, questionID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(questionID))
		pipe.Del(ctx, c.key(questionID))
		return nil
	})
	c.sf.Forget(questionID)
	return err
}

func (c *AnswerKeyCache) cached(ctx context.Context, questionID string) (domain.AnswerKey, bool) {
	data, err := c.client.Get(ctx, c.key(questionID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			config.WithContext(ctx).WithError(err).Warn("answer key cache read failed")
		}
		return domain.AnswerKey{}, false
	}
	var key domain.AnswerKey
	if err := json.Unmarshal(data, &key); err != nil {
		return domain.AnswerKey{}, false
	}
	return key, true
}

func (c *AnswerKeyCache) key(questionID string) string {
	return "mcq:" + questionID + ":key"
}

func (c *AnswerKeyCache) genKey(questionID string) string {
	return "mcq:" + questionID + ":gen"
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
