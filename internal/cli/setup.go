package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shovanNITS/Quiz-Generator-App/internal/app"
	"github.com/shovanNITS/Quiz-Generator-App/internal/config"
	"github.com/shovanNITS/Quiz-Generator-App/internal/infra/memory"
	infraredis "github.com/shovanNITS/Quiz-Generator-App/internal/infra/redis"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
	"github.com/sirupsen/logrus"
)

// loadConfig reads the YAML file and applies environment overrides.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
	}
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func newRedisClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

// newQuestionSource builds the OpenTDB client, optionally behind a cache.
func newQuestionSource(cfg config.Config, redisClient *redis.Client, log logrus.FieldLogger) app.QuestionSource {
	client := opentdb.NewClient(
		&http.Client{Timeout: config.TTLDuration(cfg.OpenTDB.Timeout, 10*time.Second)},
		opentdb.WithBaseURL(cfg.OpenTDB.BaseURL),
		opentdb.WithLogger(log),
	)
	if !cfg.Cache.Enabled {
		return client
	}

	ttl := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	if redisClient != nil {
		log.WithField("ttl", ttl).Info("caching questions in redis")
		return infraredis.NewQuestionCache(redisClient, client, ttl, log)
	}
	log.WithField("ttl", ttl).Info("caching questions in memory")
	return memory.NewQuestionCache(client, ttl)
}

func controllerOptions(cfg config.Config, log logrus.FieldLogger) []app.Option {
	return []app.Option{
		app.WithTickInterval(config.TTLDuration(cfg.Quiz.Tick, app.DefaultTickInterval)),
		app.WithLogger(log),
	}
}
