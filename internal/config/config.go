// Package config loads the user settings of the mentor CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/mentor/pkg/domain"
)

// FileName is the default settings file.
const FileName = "mentor.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MENTOR_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Settings holds user preferences and the runtime wiring of the CLI.
type Settings struct {
	LastLogin    string              `mapstructure:"last_login" yaml:"last_login,omitempty"`
	SectionsPath string              `mapstructure:"sections_path" yaml:"sections_path,omitempty"`
	SessionsPath string              `mapstructure:"sessions_path" yaml:"sessions_path,omitempty"`
	MentorPolicy domain.MentorPolicy `mapstructure:"mentor_policy" yaml:"mentor_policy,omitempty"`
	LogLevel     string              `mapstructure:"log_level" yaml:"log_level,omitempty"`
	HTTPAddr     string              `mapstructure:"http_addr" yaml:"http_addr,omitempty"`
	Store        StoreSettings       `mapstructure:"store" yaml:"store"`

	// Redact lists case-ID patterns whose answers are masked before persistence.
	Redact []string `mapstructure:"redact" yaml:"redact,omitempty"`
}

// StoreSettings selects the snapshot store backend.
type StoreSettings struct {
	Driver        string        `mapstructure:"driver" yaml:"driver"`
	Path          string        `mapstructure:"path" yaml:"path,omitempty"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr,omitempty"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password,omitempty"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db,omitempty"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		SectionsPath: ".",
		SessionsPath: filepath.Join(".mentor", "sessions"),
		MentorPolicy: domain.PolicyMentorRequired,
		LogLevel:     "info",
		HTTPAddr:     ":8080",
		Store:        StoreSettings{Driver: DriverFile},
	}
}

// envKeys maps environment variables (without prefix) to settings keys.
var envKeys = map[string]string{
	"SECTIONS_PATH":  "sections_path",
	"SESSIONS_PATH":  "sessions_path",
	"MENTOR_POLICY":  "mentor_policy",
	"LOG_LEVEL":      "log_level",
	"HTTP_ADDR":      "http_addr",
	"STORE_DRIVER":   "store.driver",
	"STORE_PATH":     "store.path",
	"REDIS_ADDR":     "store.redis_addr",
	"REDIS_PASSWORD": "store.redis_password",
	"REDIS_DB":       "store.redis_db",
	"STORE_TTL":      "store.ttl",
}

// Load reads path, applies defaults and MENTOR_* environment overrides.
// A missing file is not an error.
func Load(path string) (Settings, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Settings, error) {
	raw := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Settings{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	for env, key := range envKeys {
		if v, ok := lookup(EnvPrefix + env); ok {
			setKey(raw, key, v)
		}
	}
	if v, ok := lookup(EnvPrefix + "REDACT"); ok {
		raw["redact"] = strings.Split(v, ",")
	}

	s := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Settings{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Settings{}, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	s.MentorPolicy = s.MentorPolicy.Normalize()
	return s, s.Validate()
}

// setKey assigns a dotted key inside nested maps.
func setKey(m map[string]any, key, value string) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := m[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[p] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = value
}

// Validate checks the store driver.
func (s Settings) Validate() error {
	switch s.Store.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
		return nil
	case DriverRedis:
		if s.Store.RedisAddr == "" {
			return errors.New("store driver redis requires redis_addr")
		}
		return nil
	}
	return fmt.Errorf("unknown store driver %q", s.Store.Driver)
}

// Save writes the settings to path.
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Touch records the current login time.
func (s *Settings) Touch(now time.Time) {
	s.LastLogin = now.UTC().Format(time.RFC3339)
}
