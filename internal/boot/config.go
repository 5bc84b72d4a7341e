package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env      string `env:"ENV,default=dev"`
	BaseURL  string `env:"BASE_URL,default=http://localhost:8080/"`
	DataDir  string `env:"DATA_DIR,default=."`
	ViewsDir string `env:"VIEWS_DIR"`
	Server   struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
	}
	Session struct {
		TTL           time.Duration `env:"SESSION_TTL,default=30m"`
		RememberTTL   time.Duration `env:"SESSION_REMEMBER_TTL,default=8760h"`
		CookieSecure  bool          `env:"COOKIE_SECURE,default=false"`
		CookieSecretA string        `env:"COOKIE_SECRET_A,required"`
		CookieSecretB string        `env:"COOKIE_SECRET_B,required"`
	}
	Password struct {
		SecretA string `env:"PASSWORD_SECRET_A,required"`
		SecretB string `env:"PASSWORD_SECRET_B,required"`
	}
	Cache struct {
		Backend    string        `env:"CACHE_BACKEND,default=lru"`
		Size       int           `env:"CACHE_SIZE,default=4096"`
		Retries    int           `env:"CACHE_RETRIES,default=50"`
		RetryDelay time.Duration `env:"CACHE_RETRY_DELAY,default=1ms"`
	}
}

func Load() (*Config, error) {
	return load(envconfig.OsLookuper())
}

// LoadFrom reads the configuration from a fixed set of variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(envconfig.MapLookuper(vars))
}

func load(lookuper envconfig.Lookuper) (*Config, error) {
	config := &Config{}
	if err := envconfig.ProcessWith(context.Background(), config, lookuper); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendLRU, CacheBackendSQLite:
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.Retries < 1 {
		return fmt.Errorf("cache retries must be at least 1, got %d", c.Cache.Retries)
	}
	if c.Cache.RetryDelay <= 0 {
		return fmt.Errorf("cache retry delay must be positive, got %s", c.Cache.RetryDelay)
	}
	if c.Session.TTL <= 0 || c.Session.RememberTTL <= 0 {
		return fmt.Errorf("session lifetimes must be positive")
	}
	return nil
}

const (
	CacheBackendLRU    = "lru"
	CacheBackendSQLite = "sqlite"
)

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

func (c *Config) DataDirectory() string {
	return c.DataDir
}
