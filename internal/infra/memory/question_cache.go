package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches raw question batches from the trivia API.
type QuestionLoader interface {
	FetchQuestions(ctx context.Context, cfg domain.QuizConfig) ([]opentdb.RawQuestion, error)
}

// QuestionCache keeps raw batches per request with TTL to avoid repeated API hits.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedBatch
}

type cachedBatch struct {
	questions []opentdb.RawQuestion
	expiresAt time.Time
}

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBatch),
	}
}

func (c *QuestionCache) FetchQuestions(ctx context.Context, cfg domain.QuizConfig) ([]opentdb.RawQuestion, error) {
	key := opentdb.RequestKey(cfg)
	if batch, ok := c.lookup(key); ok {
		return batch, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if batch, ok := c.lookup(key); ok {
			return batch, nil
		}

		batch, err := c.loader.FetchQuestions(ctx, cfg)
		if err != nil {
			return nil, err
		}
		// An empty batch usually means the API had nothing for this filter right now.
		if len(batch) == 0 {
			return batch, nil
		}

		c.mu.Lock()
		c.cache[key] = cachedBatch{
			questions: batch,
			expiresAt: c.clock().Add(c.ttlWithJitterLocked()),
		}
		c.mu.Unlock()
		return batch, nil
	})
	if err != nil {
		return nil, err
	}
	return copyBatch(result.([]opentdb.RawQuestion)), nil
}

// Len reports how many batches are cached, expired ones included.
func (c *QuestionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *QuestionCache) lookup(key string) ([]opentdb.RawQuestion, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return copyBatch(entry.questions), true
}

func (c *QuestionCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func copyBatch(batch []opentdb.RawQuestion) []opentdb.RawQuestion {
	out := make([]opentdb.RawQuestion, len(batch))
	for i, q := range batch {
		q.IncorrectAnswers = append([]string(nil), q.IncorrectAnswers...)
		out[i] = q
	}
	return out
}
