package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/shovanNITS/Quiz-Generator-App/internal/auth"
	"github.com/shovanNITS/Quiz-Generator-App/internal/transport/terminal"
	"github.com/spf13/cobra"
)

// NewPlayCmd runs a quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("QUIZ_ID_TOKEN")
			}
			if token == "" {
				return errors.New("an ID token is required: pass --token or set QUIZ_ID_TOKEN (see the token command)")
			}
			return runPlay(cmd.Context(), *configPath, token)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "ID token used to sign in")
	return cmd
}

func runPlay(ctx context.Context, configPath, token string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	redisClient, err := newRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	player := terminal.NewPlayer(
		newQuestionSource(cfg, redisClient, logger),
		auth.NewTokenService([]byte(cfg.Auth.Secret)),
		terminal.WithLogger(logger),
		terminal.WithControllerOptions(controllerOptions(cfg, logger)...),
	)
	return player.Play(ctx, os.Stdin, os.Stdout, token)
}
