package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shovanNITS/Quiz-Generator-App/internal/auth"
	"github.com/shovanNITS/Quiz-Generator-App/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTopicsCommand(t *testing.T) {
	out, err := run(t, "topics")
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 24 {
		t.Fatalf("expected 24 topics, got %d", len(lines))
	}
	if fields := strings.Fields(lines[0]); len(fields) != 2 || fields[0] != "general" || fields[1] != "9" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
}

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	t.Setenv("QUIZ_AUTH_SECRET", "cli-secret")
	missing := filepath.Join(t.TempDir(), "none.yaml")

	out, err := run(t, "token", "--config", missing, "--sub", "u1", "--name", "Alice", "--ttl", "5m")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	user, err := auth.NewTokenService([]byte("cli-secret")).Verify(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if user.ID != "u1" || user.DisplayName != "Alice" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestTokenCommandRequiresSubject(t *testing.T) {
	if _, err := run(t, "token"); err == nil {
		t.Fatalf("expected error without --sub")
	}
}

func TestPlayCommandRequiresToken(t *testing.T) {
	t.Setenv("QUIZ_ID_TOKEN", "")
	if _, err := run(t, "play"); err == nil || !strings.Contains(err.Error(), "ID token") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestLoadConfigAppliesEnv(t *testing.T) {
	t.Setenv("OPENTDB_URL", "http://localhost:9999/api.php")
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenTDB.BaseURL != "http://localhost:9999/api.php" {
		t.Fatalf("env override not applied: %q", cfg.OpenTDB.BaseURL)
	}
	if cfg.Auth.Secret != config.Default().Auth.Secret {
		t.Fatalf("unexpected secret %q", cfg.Auth.Secret)
	}
}
