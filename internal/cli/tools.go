package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/shovanNITS/Quiz-Generator-App/internal/auth"
	"github.com/shovanNITS/Quiz-Generator-App/internal/config"
	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/shovanNITS/Quiz-Generator-App/internal/opentdb"
	"github.com/spf13/cobra"
)

// NewTopicsCmd prints the topic vocabulary.
func NewTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List quiz topics and their OpenTDB categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, topic := range opentdb.Topics() {
				fmt.Fprintf(out, "%-12s %d\n", topic.Name, topic.CategoryID)
			}
			return nil
		},
	}
}

// NewTokenCmd mints a development ID token signed with the configured secret.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		user domain.User
		ttl  string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development ID token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user.ID == "" {
				return errors.New("--sub is required")
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if ttl == "" {
				ttl = cfg.Auth.TokenTTL
			}
			tokens := auth.NewTokenService([]byte(cfg.Auth.Secret))
			token, err := tokens.Issue(user, config.TTLDuration(ttl, time.Hour))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user.ID, "sub", "", "user id (token subject)")
	cmd.Flags().StringVar(&user.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&user.PhotoURL, "picture", "", "photo URL")
	cmd.Flags().StringVar(&ttl, "ttl", "", "token lifetime, e.g. 1h (defaults to auth.token_ttl)")
	return cmd
}
