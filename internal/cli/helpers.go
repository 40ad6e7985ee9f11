package cli

import (
	"log/slog"

	"github.com/aretw0/handshake"
	"github.com/aretw0/handshake/internal/config"
	"github.com/aretw0/handshake/internal/logging"
	"github.com/aretw0/handshake/pkg/adapters/redis"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/observability"
)

// Overrides are command-line values that take precedence over the config file.
// Nil fields leave the file value untouched.
type Overrides struct {
	DelayMS      *int
	AutoRedirect *bool
	RedisAddr    *string
	RedisPrefix  *string
	Port         *string
	LogLevel     *string
}

// LoadConfig reads the config file and applies overrides.
func LoadConfig(path string, o Overrides) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if o.DelayMS != nil {
		cfg.DelayMS = *o.DelayMS
	}
	if o.AutoRedirect != nil {
		cfg.AutoRedirectOnDelay = *o.AutoRedirect
	}
	if o.RedisAddr != nil {
		cfg.Redis.Addr = *o.RedisAddr
	}
	if o.RedisPrefix != nil {
		cfg.Redis.Prefix = *o.RedisPrefix
	}
	if o.Port != nil {
		cfg.HTTP.Port = *o.Port
	}
	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}
	return cfg, cfg.Validate()
}

// createLogger configures the application logger.
// It writes to Stderr (to separate from Stdout decision output).
func createLogger(cfg config.Config, debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(logging.ParseLevel(cfg.Log.Level))
}

// newRedisStore opens the agent record store described by cfg.
func newRedisStore(cfg config.Config, logger *slog.Logger) *redis.Store {
	return redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redis.WithPrefix(cfg.Redis.Prefix),
		redis.WithLogger(logger),
	)
}

// engineOptions are the options shared by every command.
func engineOptions(cfg config.Config, logger *slog.Logger, debug bool) []handshake.Option {
	opts := []handshake.Option{
		handshake.WithConfig(cfg.ToDomain()),
		handshake.WithLogger(logger),
	}
	if debug {
		opts = append(opts, handshake.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	return opts
}

func describe(dest domain.Destination) map[string]string {
	return map[string]string{
		"destination": string(dest.Kind()),
		"target":      targetOf(dest),
	}
}
