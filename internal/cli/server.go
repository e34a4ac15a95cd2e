package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shovanNITS/Quiz-Generator-App/internal/app"
	"github.com/shovanNITS/Quiz-Generator-App/internal/auth"
	"github.com/shovanNITS/Quiz-Generator-App/internal/config"
	"github.com/shovanNITS/Quiz-Generator-App/internal/infra/memory"
	infraredis "github.com/shovanNITS/Quiz-Generator-App/internal/infra/redis"
	transport "github.com/shovanNITS/Quiz-Generator-App/internal/transport/http"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	redisClient, err := newRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = infraredis.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		store = memory.NewSessionStore()
	}

	source := newQuestionSource(cfg, redisClient, logger)
	tokens := auth.NewTokenService([]byte(cfg.Auth.Secret))
	wsHandler := transport.NewWSHandler(source, tokens, store,
		transport.WithLogger(logger),
		transport.WithControllerOptions(controllerOptions(cfg, logger)...),
		transport.WithGateOptions(auth.WithPlaceholderAvatar(cfg.Auth.PlaceholderAvatar)),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      wsHandler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("port", finalPort).Info("starting quiz server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
