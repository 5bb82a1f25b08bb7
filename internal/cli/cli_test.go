package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gig-booking/internal/config"
)

func run(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(&RootOptions{Load: func() (config.Config, error) { return cfg, nil }})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"migrate", "token", "audit"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
}

func TestTokenCommand(t *testing.T) {
	cfg := config.Defaults()
	cfg.JWTSecret = "cli-secret"

	out, err := run(t, cfg, "token", "--profile", "organizer-1", "--ttl", "5")
	require.NoError(t, err)

	var got tokenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "organizer-1", got.ProfileID)

	parsed, err := jwt.Parse(got.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "organizer-1", sub)
}

func TestTokenCommandRequiresProfile(t *testing.T) {
	cfg := config.Defaults()
	cfg.JWTSecret = "cli-secret"
	_, err := run(t, cfg, "token")
	assert.ErrorContains(t, err, "--profile")
}

func TestMigrateCommandSQLite(t *testing.T) {
	cfg := config.Defaults()
	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "gig.db")

	out, err := run(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema at version 1")

	// A second run finds nothing to apply.
	out, err = run(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "version 1")
}
