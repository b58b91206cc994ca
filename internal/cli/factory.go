package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/mentor"
	"github.com/aretw0/mentor/internal/config"
	"github.com/aretw0/mentor/pkg/adapters/file"
	"github.com/aretw0/mentor/pkg/adapters/memory"
	"github.com/aretw0/mentor/pkg/adapters/redis"
	"github.com/aretw0/mentor/pkg/adapters/sqlite"
	"github.com/aretw0/mentor/pkg/observability"
	"github.com/aretw0/mentor/pkg/persistence/middleware"
	"github.com/aretw0/mentor/pkg/ports"
)

// Encryption keys are read from the environment only; they never live in the settings file.
const (
	EnvEncryptionKey      = "MENTOR_ENCRYPTION_KEY"
	EnvEncryptionFallback = "MENTOR_ENCRYPTION_FALLBACK_KEYS"
)

// Backend is an opened snapshot store with its optional locker.
type Backend struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the store connection.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend builds the store selected by settings and wraps it with the
// redaction and encryption middleware.
func OpenBackend(settings config.Settings, lookup func(string) (string, bool)) (*Backend, error) {
	b := &Backend{}
	path := settings.Store.Path

	switch settings.Store.Driver {
	case config.DriverMemory:
		b.Store = memory.NewStore()
	case config.DriverFile:
		if path == "" {
			path = settings.SessionsPath
		}
		b.Store = file.NewStore(path)
	case config.DriverSQLite:
		if path == "" {
			path = filepath.Join(settings.SessionsPath, "sessions.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		store, err := sqlite.New(path)
		if err != nil {
			return nil, err
		}
		b.Store, b.close = store, store.Close
	case config.DriverRedis:
		var opts []redis.Option
		if settings.Store.TTL > 0 {
			opts = append(opts, redis.WithTTL(settings.Store.TTL))
		}
		store := redis.New(settings.Store.RedisAddr, settings.Store.RedisPassword, settings.Store.RedisDB, opts...)
		b.Store, b.close = store, store.Close
		b.Locker = redis.NewLocker(store.Client(), "mentor:lock:")
	default:
		return nil, fmt.Errorf("unknown store driver %q", settings.Store.Driver)
	}

	// Redaction is outermost so answers are masked before the snapshot is sealed.
	var mws []middleware.Middleware
	if len(settings.Redact) > 0 {
		red, err := middleware.NewRedactionMiddleware(settings.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, red)
	}
	keys, err := encryptionKeys(lookup)
	if err != nil {
		return nil, err
	}
	if keys != nil {
		enc, err := middleware.NewEncryptionMiddleware(*keys)
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	b.Store = middleware.Chain(b.Store, mws...)
	return b, nil
}

func encryptionKeys(lookup func(string) (string, bool)) (*middleware.EncryptionConfig, error) {
	active, ok := lookup(EnvEncryptionKey)
	if !ok || active == "" {
		return nil, nil
	}
	key, err := decodeKey(active)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvEncryptionKey, err)
	}
	cfg := &middleware.EncryptionConfig{ActiveKey: key}

	if raw, ok := lookup(EnvEncryptionFallback); ok && raw != "" {
		for _, item := range strings.Split(raw, ",") {
			k, err := decodeKey(strings.TrimSpace(item))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", EnvEncryptionFallback, err)
			}
			cfg.FallbackKeys = append(cfg.FallbackKeys, k)
		}
	}
	return cfg, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.New("key must be hex encoded")
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// NewTrainer wires a Trainer on backend with logging hooks and, when
// metrics is not nil, the Prometheus collectors.
func NewTrainer(settings config.Settings, backend *Backend, logger *slog.Logger, metrics *observability.Metrics) (*mentor.Trainer, error) {
	hooks := observability.LoggingHooks(logger)
	opts := []mentor.Option{
		mentor.WithStore(backend.Store),
		mentor.WithLogger(logger),
		mentor.WithDefaultPolicy(settings.MentorPolicy),
	}
	if backend.Locker != nil {
		opts = append(opts, mentor.WithLocker(backend.Locker))
	}
	if metrics != nil {
		hooks = observability.Combine(hooks, metrics.Hooks())
		opts = append(opts, mentor.WithTaskObserver(metrics.ObserveTask))
	}
	opts = append(opts, mentor.WithLifecycleHooks(hooks))
	return mentor.New(opts...)
}

// ResolvePath resolves a section argument against the configured sections path.
func ResolvePath(settings config.Settings, arg string) string {
	if arg == "" {
		return settings.SectionsPath
	}
	if filepath.IsAbs(arg) || settings.SectionsPath == "" || settings.SectionsPath == "." {
		return arg
	}
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	return filepath.Join(settings.SectionsPath, arg)
}
