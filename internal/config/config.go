package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret   string `env:"JWT_SECRET,required,notEmpty"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`

	DBMaxOpenConns     int  `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int  `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int  `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int  `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
	MigrateOnStart     bool `env:"MIGRATE_ON_START" envDefault:"true"`

	// Zero leaves lock waits unbounded.
	LedgerLockTimeout time.Duration `env:"LEDGER_LOCK_TIMEOUT" envDefault:"5s"`

	RedisURL          string `env:"REDIS_URL"`
	LedgerEventStream string `env:"LEDGER_EVENT_STREAM" envDefault:"ledger.events"`

	IdempotencyTTL             time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	IdempotencyCleanupInterval time.Duration `env:"IDEMPOTENCY_CLEANUP_INTERVAL" envDefault:"10m"`
}

// Load reads an optional .env file from the working directory and then parses
// the process environment. Variables already set take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: dotenv: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.LedgerLockTimeout < 0 {
		return nil, fmt.Errorf("config.Load: LEDGER_LOCK_TIMEOUT must not be negative")
	}
	return &cfg, nil
}
