package integration

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shovanNITS/Quiz-Generator-App/internal/app"
	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	infraredis "github.com/shovanNITS/Quiz-Generator-App/internal/infra/redis"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const triviaPayload = `{
  "response_code": 0,
  "results": [
    {"type":"multiple","difficulty":"easy","category":"Science &amp; Nature",
     "question":"Which planet is the largest?","correct_answer":"Jupiter",
     "incorrect_answers":["Mars","Venus","Saturn"]},
    {"type":"boolean","difficulty":"easy","category":"Science &amp; Nature",
     "question":"Water boils at 100&deg;C at sea level.","correct_answer":"True",
     "incorrect_answers":["False"]}
  ]
}`

func TestCachedQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	var hits atomic.Int32
	trivia := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("category") != "17" {
			t.Errorf("expected science category, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, triviaPayload)
	}))
	defer trivia.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client := opentdb.NewClient(trivia.Client(), opentdb.WithBaseURL(trivia.URL+"/api.php"), opentdb.WithLogger(logger))
	cache := infraredis.NewQuestionCache(redisClient, client, 5*time.Minute, logger)
	store := infraredis.NewSessionStore(redisClient, 5*time.Minute)

	cfg := domain.QuizConfig{
		Topic:         "science",
		Difficulty:    domain.DifficultyEasy,
		QuestionCount: 2,
		QuestionType:  domain.QuestionTypeAny,
	}

	for _, tab := range []string{"tab-1", "tab-2"} {
		presenter := &lastView{}
		controller := app.NewController(tab, cache, presenter,
			app.WithShuffler(rand.New(rand.NewSource(1))),
			app.WithTickInterval(time.Hour),
			app.WithLogger(logger),
		)
		store.Put(controller)

		if n, err := redisClient.Exists(ctx, "quiz:session:"+tab).Result(); err != nil || n != 1 {
			t.Fatalf("expected liveness key for %s, n=%d err=%v", tab, n, err)
		}

		if err := controller.SubmitConfig(ctx, cfg); err != nil {
			t.Fatalf("%s submit: %v", tab, err)
		}
		for {
			view := controller.View()
			if view.Screen != domain.ScreenQuiz {
				break
			}
			correct := map[int]string{1: "Jupiter", 2: "True"}[view.Question.Number]
			if err := controller.Select(correct); err != nil {
				t.Fatalf("%s select: %v", tab, err)
			}
			if err := controller.Advance(); err != nil {
				t.Fatalf("%s advance: %v", tab, err)
			}
		}

		result := controller.View().Result
		if result == nil || result.Percentage != 100 || result.Summary != "2 out of 2 correct" {
			t.Fatalf("%s: unexpected result %+v", tab, result)
		}
		if !strings.Contains(presenter.get().Result.Review[1].Prompt, "100°C") {
			t.Fatalf("expected decoded entities, got %q", presenter.get().Result.Review[1].Prompt)
		}

		controller.Close()
		store.Delete(tab)
	}

	if hits.Load() != 1 {
		t.Fatalf("expected second tab served from redis, api hits=%d", hits.Load())
	}
	if n, _ := redisClient.Exists(ctx, "trivia:questions:"+opentdb.RequestKey(cfg)).Result(); n != 1 {
		t.Fatalf("expected cached batch in redis")
	}
	if n, _ := redisClient.Exists(ctx, "quiz:session:tab-1").Result(); n != 0 {
		t.Fatalf("expected liveness key removed")
	}
}

type lastView struct {
	mu   sync.Mutex
	view app.View
}

func (p *lastView) Render(v app.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = v
}

func (p *lastView) Tick(string)   {}
func (p *lastView) Notify(string) {}

func (p *lastView) get() app.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
