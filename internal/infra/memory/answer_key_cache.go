package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"mcq-assessment-service/internal/app"
	"mcq-assessment-service/internal/domain"
)

// AnswerKeyCache caches answer keys with TTL to avoid repeated store hits while scoring.
type AnswerKeyCache struct {
	loader app.AnswerKeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedKey
	// gen is bumped by Invalidate; a load only stores its result if gen did not move.
	gen map[string]uint64
}

type cachedKey struct {
	key       domain.AnswerKey
	expiresAt time.Time
}

func NewAnswerKeyCache(loader app.AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedKey),
		gen:    make(map[string]uint64),
	}
}

func (c *AnswerKeyCache) AnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	if key, ok := c.cached(questionID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(questionID, func() (interface{}, error) {
		if key, ok := c.cached(questionID); ok {
			return key, nil
		}

		c.mu.RLock()
		gen := c.gen[questionID]
		c.mu.RUnlock()

		// Shared by every waiter, so one caller going away must not fail the rest.
		key, err := c.loader.LoadAnswerKey(context.WithoutCancel(ctx), questionID)
		if err != nil {
			return domain.AnswerKey{}, err
		}

		c.mu.Lock()
		if c.gen[questionID] == gen {
			c.cache[questionID] = cachedKey{
				key:       key,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

// Invalidate drops the cached key and discards any load already in flight for it.
func (c *AnswerKeyCache) Invalidate(_ context.Context, questionID string) error {
	c.mu.Lock()
	c.gen[questionID]++
	delete(c.cache, questionID)
	c.mu.Unlock()
	c.sf.Forget(questionID)
	return nil
}

func (c *AnswerKeyCache) cached(questionID string) (domain.AnswerKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[questionID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.AnswerKey{}, false
	}
	return entry.key, true
}

// ttlWithJitter must be called with mu held.
func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
