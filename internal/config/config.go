// Package config loads tuno settings from a .env file, an optional YAML file
// and TUNO_* environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	engine "github.com/jason-s-yu/tuno/engine"
	"github.com/jason-s-yu/tuno/internal/alerts"
)

type AlertsConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	Recent        int           `yaml:"recent"`
}

type PromptConfig struct {
	// TurnTimeout bounds how long a human has to answer. Zero waits forever.
	TurnTimeout  time.Duration `yaml:"turn_timeout"`
	TimeoutColor string        `yaml:"timeout_color"`
	WrongInput   string        `yaml:"wrong_input"`
	IllegalMove  string        `yaml:"illegal_move"`
}

type LogConfig struct {
	Dir           string `yaml:"dir"`
	Level         string `yaml:"level"`
	RetentionDays int    `yaml:"retention_days"`
}

// Config holds every tunable of a tuno process.
type Config struct {
	Players      []string `yaml:"players"`
	Bot          string   `yaml:"bot"`
	HandSize     int      `yaml:"hand_size"`
	Seed         uint64   `yaml:"seed"`
	FixedSeating bool     `yaml:"fixed_seating"`

	Alerts AlertsConfig `yaml:"alerts"`
	Prompt PromptConfig `yaml:"prompt"`
	Log    LogConfig    `yaml:"log"`

	RedisURL     string `yaml:"redis_url"`
	DatabaseURL  string `yaml:"database_url"`
	SpectateAddr string `yaml:"spectate_addr"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Players:  []string{"player", "computer", "player2"},
		Bot:      "computer",
		HandSize: engine.DefaultHandSize,
		Alerts: AlertsConfig{
			TTL:           30 * time.Second,
			SweepInterval: time.Second,
			Recent:        alerts.DefaultRecent,
		},
		Prompt: PromptConfig{
			TimeoutColor: "R",
			WrongInput:   "Wrong input!",
			IllegalMove:  "Can't play the card",
		},
		Log: LogConfig{
			Dir:           "~/.tuno/logs",
			Level:         "debug",
			RetentionDays: 30,
		},
	}
}

// Load builds the configuration. envFile defaults to ".env" and may be
// missing. path names an optional YAML file.
func Load(path string, envFile ...string) (Config, error) {
	files := envFile
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	str("TUNO_BOT", &c.Bot)
	str("TUNO_TIMEOUT_COLOR", &c.Prompt.TimeoutColor)
	str("TUNO_WRONG_INPUT", &c.Prompt.WrongInput)
	str("TUNO_ILLEGAL_MOVE", &c.Prompt.IllegalMove)
	str("TUNO_LOG_DIR", &c.Log.Dir)
	str("TUNO_LOG_LEVEL", &c.Log.Level)
	str("TUNO_REDIS_URL", &c.RedisURL)
	str("TUNO_DATABASE_URL", &c.DatabaseURL)
	str("TUNO_SPECTATE_ADDR", &c.SpectateAddr)

	if v, ok := os.LookupEnv("TUNO_PLAYERS"); ok {
		c.Players = SplitNames(v)
	}

	var errs []error
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num("TUNO_HAND_SIZE", &c.HandSize)
	num("TUNO_ALERT_RECENT", &c.Alerts.Recent)
	num("TUNO_LOG_RETENTION_DAYS", &c.Log.RetentionDays)
	dur("TUNO_ALERT_TTL", &c.Alerts.TTL)
	dur("TUNO_SWEEP_INTERVAL", &c.Alerts.SweepInterval)
	dur("TUNO_TURN_TIMEOUT", &c.Prompt.TurnTimeout)

	if v, ok := os.LookupEnv("TUNO_SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TUNO_SEED: %w", err))
		} else {
			c.Seed = n
		}
	}
	if v, ok := os.LookupEnv("TUNO_FIXED_SEATING"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TUNO_FIXED_SEATING: %w", err))
		} else {
			c.FixedSeating = b
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// fillDefaults restores defaults for values a file or the environment
// cleared.
func (c *Config) fillDefaults() {
	d := Default()
	if len(c.Players) == 0 {
		c.Players = d.Players
	}
	if c.HandSize == 0 {
		c.HandSize = d.HandSize
	}
	if c.Alerts.TTL == 0 {
		c.Alerts.TTL = d.Alerts.TTL
	}
	if c.Alerts.SweepInterval == 0 {
		c.Alerts.SweepInterval = d.Alerts.SweepInterval
	}
	if c.Alerts.Recent == 0 {
		c.Alerts.Recent = d.Alerts.Recent
	}
	if c.Prompt.TimeoutColor == "" {
		c.Prompt.TimeoutColor = d.Prompt.TimeoutColor
	}
	if c.Prompt.WrongInput == "" {
		c.Prompt.WrongInput = d.Prompt.WrongInput
	}
	if c.Prompt.IllegalMove == "" {
		c.Prompt.IllegalMove = d.Prompt.IllegalMove
	}
	if c.Log.Dir == "" {
		c.Log.Dir = d.Log.Dir
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.RetentionDays == 0 {
		c.Log.RetentionDays = d.Log.RetentionDays
	}
}

// Validate rejects settings no game could run with.
func (c Config) Validate() error {
	var errs []error
	if n := len(c.Players); n < engine.MinPlayers || n > engine.MaxPlayers {
		errs = append(errs, fmt.Errorf("players: %d configured, want %d-%d", n, engine.MinPlayers, engine.MaxPlayers))
	}
	seen := make(map[string]bool, len(c.Players))
	for _, p := range c.Players {
		if p == "" {
			errs = append(errs, errors.New("players: empty name"))
		} else if seen[p] {
			errs = append(errs, fmt.Errorf("players: %q listed twice", p))
		}
		seen[p] = true
	}
	if c.HandSize < 1 || c.HandSize > engine.MaxHandSize {
		errs = append(errs, fmt.Errorf("hand_size: %d, want 1-%d", c.HandSize, engine.MaxHandSize))
	}
	if c.Alerts.TTL < 0 || c.Alerts.SweepInterval < 0 || c.Alerts.Recent < 0 {
		errs = append(errs, errors.New("alerts: negative value"))
	}
	if c.Alerts.Recent > alerts.DefaultRecent {
		errs = append(errs, fmt.Errorf("alerts: recent %d, want at most %d", c.Alerts.Recent, alerts.DefaultRecent))
	}
	if c.Prompt.TurnTimeout < 0 {
		errs = append(errs, errors.New("prompt: negative turn_timeout"))
	}
	if _, err := engine.ParseColor(strings.ToUpper(c.Prompt.TimeoutColor)); err != nil {
		errs = append(errs, fmt.Errorf("prompt: timeout_color: %w", err))
	}
	if c.Log.RetentionDays < 0 {
		errs = append(errs, errors.New("log: negative retention_days"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// HasBot reports whether the automated player is seated.
func (c Config) HasBot() bool {
	for _, p := range c.Players {
		if p == c.Bot {
			return true
		}
	}
	return false
}

// SplitNames parses a comma-separated player list, dropping blanks.
func SplitNames(s string) []string {
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
