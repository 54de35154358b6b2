package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "AuthShell"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultAuthBaseURL     = "https://first-mern-app-api.onrender.com"
	defaultStoreDriver     = "sqlite"
	defaultSQLitePath      = "authshell.db"
	defaultNamespace       = "default"
	defaultSplashDelay     = 3 * time.Second
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 10 * time.Minute
	defaultSignInPerMinute = 5
	defaultPasswordAtRest  = "plain"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures runtime configuration loaded from environment variables.
type Config struct {
	AppName   string
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	// AuthBaseURL is the remote authentication service. AuthTimeout of zero
	// leaves requests unbounded apart from the caller's context.
	AuthBaseURL string
	AuthTimeout time.Duration

	StoreDriver    string
	StoreNamespace string
	SQLitePath     string
	DatabaseURL    string
	RedisURL       string
	PasswordAtRest string

	SplashDelay     time.Duration
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	SignInPerMinute int
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		AuthBaseURL:     getEnv("AUTH_BASE_URL", defaultAuthBaseURL),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", defaultStoreDriver)),
		StoreNamespace:  getEnv("STORE_NAMESPACE", defaultNamespace),
		SQLitePath:      getEnv("SQLITE_PATH", defaultSQLitePath),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		PasswordAtRest:  strings.ToLower(getEnv("PASSWORD_AT_REST", defaultPasswordAtRest)),
		SplashDelay:     defaultSplashDelay,
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
		SignInPerMinute: defaultSignInPerMinute,
	}

	var err error
	if cfg.AuthTimeout, err = durationEnv("AUTH_HTTP_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.SplashDelay, err = durationEnv("SPLASH_DELAY", defaultSplashDelay); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if cfg.ShutdownPeriod, err = durationEnv(shutdownDurationEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if cfg.IdempotencyTTL, err = durationEnv(idemTTLDurEnvVar, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("SIGNIN_RATE_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SIGNIN_RATE_PER_MIN: %w", err)
		}
		cfg.SignInPerMinute = n
	}

	switch cfg.StoreDriver {
	case "sqlite":
		if cfg.SQLitePath == "" {
			return Config{}, fmt.Errorf("SQLITE_PATH must be set for STORE_DRIVER=sqlite")
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set for STORE_DRIVER=postgres")
		}
	case "redis":
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set for STORE_DRIVER=redis")
		}
	case "memory":
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.PasswordAtRest {
	case "plain", "bcrypt":
	default:
		return Config{}, fmt.Errorf("unsupported PASSWORD_AT_REST %q", cfg.PasswordAtRest)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
