package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches raw question batches from the trivia API.
type QuestionLoader interface {
	FetchQuestions(ctx context.Context, cfg domain.QuizConfig) ([]opentdb.RawQuestion, error)
}

// QuestionCache stores raw batches in Redis and falls back to a loader on cache miss.
// Batches are stored as JSON: SET trivia:questions:{cacheKey} [...] EX ttl
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	log    logrus.FieldLogger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration, log logrus.FieldLogger) *QuestionCache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) FetchQuestions(ctx context.Context, cfg domain.QuizConfig) ([]opentdb.RawQuestion, error) {
	key := c.key(cfg)
	if batch, ok := c.lookup(ctx, key); ok {
		return batch, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if batch, ok := c.lookup(ctx, key); ok {
			return batch, nil
		}

		batch, err := c.loader.FetchQuestions(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return batch, nil
		}

		// SET with a zero expiration never expires, so a non-positive ttl disables caching.
		ttl := c.ttlWithJitter()
		if ttl <= 0 {
			return batch, nil
		}
		payload, err := json.Marshal(batch)
		if err != nil {
			return nil, fmt.Errorf("encode questions: %w", err)
		}
		// best-effort write; a failed SET only costs a later miss
		if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("question cache write failed")
		}
		return batch, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]opentdb.RawQuestion), nil
}

func (c *QuestionCache) lookup(ctx context.Context, key string) ([]opentdb.RawQuestion, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField("key", key).Warn("question cache read failed")
		}
		return nil, false
	}
	var batch []opentdb.RawQuestion
	if err := json.Unmarshal(data, &batch); err != nil || len(batch) == 0 {
		return nil, false
	}
	return batch, true
}

func (c *QuestionCache) key(cfg domain.QuizConfig) string {
	return "trivia:questions:" + opentdb.RequestKey(cfg)
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
