package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"player", "computer", "player2"}, cfg.Players)
	assert.Equal(t, "computer", cfg.Bot)
	assert.True(t, cfg.HasBot())
	assert.Equal(t, 7, cfg.HandSize)
	assert.Equal(t, 30*time.Second, cfg.Alerts.TTL)
	assert.Equal(t, time.Second, cfg.Alerts.SweepInterval)
	assert.Equal(t, 5, cfg.Alerts.Recent)
	assert.Equal(t, 30, cfg.Log.RetentionDays)
	assert.Zero(t, cfg.Prompt.TurnTimeout)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "tuno.yaml", `
players: [ann, bo]
bot: bo
hand_size: 5
seed: 12
alerts:
  ttl: 10s
prompt:
  turn_timeout: 1m
  timeout_color: b
log:
  level: info
`)
	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"ann", "bo"}, cfg.Players)
	assert.Equal(t, "bo", cfg.Bot)
	assert.Equal(t, 5, cfg.HandSize)
	assert.Equal(t, uint64(12), cfg.Seed)
	assert.Equal(t, 10*time.Second, cfg.Alerts.TTL)
	assert.Equal(t, time.Second, cfg.Alerts.SweepInterval, "unset field keeps its default")
	assert.Equal(t, time.Minute, cfg.Prompt.TurnTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "tuno.yaml", "hand_size: 5\nbot: bo\n")
	t.Setenv("TUNO_HAND_SIZE", "4")
	t.Setenv("TUNO_PLAYERS", " x, y ,,z ")
	t.Setenv("TUNO_TURN_TIMEOUT", "15s")
	t.Setenv("TUNO_FIXED_SEATING", "true")

	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.HandSize)
	assert.Equal(t, []string{"x", "y", "z"}, cfg.Players)
	assert.Equal(t, 15*time.Second, cfg.Prompt.TurnTimeout)
	assert.True(t, cfg.FixedSeating)
	assert.Equal(t, "bo", cfg.Bot)
	assert.False(t, cfg.HasBot())
}

func TestDotEnvFile(t *testing.T) {
	env := writeFile(t, "test.env", "TUNO_REDIS_URL=redis://localhost:6379/2\n")
	t.Setenv("TUNO_REDIS_URL", "")
	os.Unsetenv("TUNO_REDIS_URL")

	cfg, err := Load("", env)
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisURL)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad env number", func(t *testing.T) {
		t.Setenv("TUNO_HAND_SIZE", "lots")
		_, err := Load("", noEnvFile(t))
		assert.ErrorContains(t, err, "TUNO_HAND_SIZE")
	})
	t.Run("missing yaml", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noEnvFile(t))
		assert.Error(t, err)
	})
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "players: [a"), noEnvFile(t))
		assert.Error(t, err)
	})
}

func TestAlertRecentCapped(t *testing.T) {
	t.Setenv("TUNO_ALERT_RECENT", "12")
	_, err := Load("", noEnvFile(t))
	assert.ErrorContains(t, err, "recent 12")

	t.Setenv("TUNO_ALERT_RECENT", "3")
	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Alerts.Recent)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"one player", func(c *Config) { c.Players = []string{"a"} }, "players"},
		{"duplicate", func(c *Config) { c.Players = []string{"a", "a"} }, "listed twice"},
		{"hand size", func(c *Config) { c.HandSize = 50 }, "hand_size"},
		{"timeout color", func(c *Config) { c.Prompt.TimeoutColor = "purple" }, "timeout_color"},
		{"negative timeout", func(c *Config) { c.Prompt.TurnTimeout = -time.Second }, "turn_timeout"},
		{"too many alerts", func(c *Config) { c.Alerts.Recent = 6 }, "at most 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
	assert.NoError(t, Default().Validate())
}
