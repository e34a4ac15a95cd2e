package redis

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
	"github.com/sirupsen/logrus"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{batch: sampleBatch()}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute, quietLogger())

	if _, err := cache.FetchQuestions(context.Background(), sampleConfig()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader called once, got %d", loader.count())
	}
	key := "trivia:questions:" + opentdb.RequestKey(sampleConfig())
	if !mr.Exists(key) {
		t.Fatalf("expected %s to be written", key)
	}
	if ttl := mr.TTL(key); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	got, err := cache.FetchQuestions(context.Background(), sampleConfig())
	if err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.count())
	}
	if len(got) != 1 || got[0].Question != "What is 2 + 2?" || len(got[0].IncorrectAnswers) != 3 {
		t.Fatalf("unexpected cached batch %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	_, _ = cache.FetchQuestions(context.Background(), sampleConfig())
	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.count())
	}
}

func TestQuestionCacheSkipsEmptyBatches(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{batch: []opentdb.RawQuestion{}}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute, quietLogger())

	_, _ = cache.FetchQuestions(context.Background(), sampleConfig())
	_, _ = cache.FetchQuestions(context.Background(), sampleConfig())
	if loader.count() != 2 {
		t.Fatalf("expected empty batches to bypass cache, loader calls=%d", loader.count())
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected no keys, got %v", mr.Keys())
	}
}

func TestQuestionCacheZeroTTLDisablesCaching(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{batch: sampleBatch()}
	cache := NewQuestionCache(newClient(mr), loader, 0, quietLogger())

	for i := 0; i < 2; i++ {
		if _, err := cache.FetchQuestions(context.Background(), sampleConfig()); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if loader.count() != 2 {
		t.Fatalf("expected every fetch to reach the loader, calls=%d", loader.count())
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected nothing stored without a ttl, got %v", mr.Keys())
	}
}

func TestQuestionCacheSharesKeyForUnmappedTopics(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{batch: sampleBatch()}
	cache := NewQuestionCache(newClient(mr), loader, time.Minute, quietLogger())

	for _, topic := range []string{"pirates", "dinosaurs"} {
		cfg := sampleConfig()
		cfg.Topic = topic
		if _, err := cache.FetchQuestions(context.Background(), cfg); err != nil {
			t.Fatalf("fetch %s: %v", topic, err)
		}
	}
	if loader.count() != 1 {
		t.Fatalf("expected unmapped topics to share one entry, loader calls=%d", loader.count())
	}
	if keys := mr.Keys(); len(keys) != 1 {
		t.Fatalf("expected a single key, got %v", keys)
	}
}

func TestQuestionCacheFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	loader := &countingLoader{batch: sampleBatch()}
	cache := NewQuestionCache(client, loader, time.Minute, quietLogger())

	got, err := cache.FetchQuestions(context.Background(), sampleConfig())
	if err != nil {
		t.Fatalf("expected loader result despite redis outage, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected batch %+v", got)
	}
}

type countingLoader struct {
	mu    sync.Mutex
	batch []opentdb.RawQuestion
	calls int
}

func (l *countingLoader) FetchQuestions(_ context.Context, _ domain.QuizConfig) ([]opentdb.RawQuestion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.batch, nil
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleConfig() domain.QuizConfig {
	return domain.QuizConfig{
		Topic:         "math",
		Difficulty:    domain.DifficultyEasy,
		QuestionCount: 1,
		QuestionType:  domain.QuestionTypeMCQ,
	}
}

func sampleBatch() []opentdb.RawQuestion {
	return []opentdb.RawQuestion{
		{
			Type:             opentdb.TypeMultiple,
			Difficulty:       "easy",
			Question:         "What is 2 + 2?",
			CorrectAnswer:    "4",
			IncorrectAnswers: []string{"3", "5", "22"},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
