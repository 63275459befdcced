package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Crawl   CrawlConfig   `yaml:"crawl" mapstructure:"crawl"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CrawlConfig configures the question crawl.
type CrawlConfig struct {
	MaxConcurrentSites  int     `yaml:"max_concurrent_sites" mapstructure:"max_concurrent_sites"`
	KeywordsPerSite     int     `yaml:"keywords_per_site" mapstructure:"keywords_per_site"`
	NavTimeoutSecs      int     `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	SelectorTimeoutSecs int     `yaml:"selector_timeout_secs" mapstructure:"selector_timeout_secs"`
	MinDelayMs          int     `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
	MaxDelayMs          int     `yaml:"max_delay_ms" mapstructure:"max_delay_ms"`
	RetryAttempts       int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	SiteRPS             float64 `yaml:"site_rps" mapstructure:"site_rps"`
	BreakerThreshold    int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs    int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
	FallbackEnabled     bool    `yaml:"fallback_enabled" mapstructure:"fallback_enabled"`
	DegradedTTLMins     int     `yaml:"degraded_ttl_mins" mapstructure:"degraded_ttl_mins"`
	TimeoutSecs         int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	SitesFile           string  `yaml:"sites_file" mapstructure:"sites_file"`
}

// NavTimeout returns the page navigation timeout.
func (c CrawlConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSecs) * time.Second
}

// SelectorTimeout returns the wait-for-selector timeout.
func (c CrawlConfig) SelectorTimeout() time.Duration {
	return time.Duration(c.SelectorTimeoutSecs) * time.Second
}

// DegradedTTL returns how long a fallback result stays cached. Zero means
// fallback results are not cached.
func (c CrawlConfig) DegradedTTL() time.Duration {
	return time.Duration(c.DegradedTTLMins) * time.Minute
}

// Timeout bounds one whole crawl. Zero means no bound.
func (c CrawlConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// DelayRange returns the randomized inter-keyword delay bounds.
func (c CrawlConfig) DelayRange() (time.Duration, time.Duration) {
	return time.Duration(c.MinDelayMs) * time.Millisecond, time.Duration(c.MaxDelayMs) * time.Millisecond
}

// BrowserConfig configures the headless Chrome process.
type BrowserConfig struct {
	Headless  bool   `yaml:"headless" mapstructure:"headless"`
	ExecPath  string `yaml:"exec_path" mapstructure:"exec_path"`
	NoSandbox bool   `yaml:"no_sandbox" mapstructure:"no_sandbox"`
	Proxy     string `yaml:"proxy" mapstructure:"proxy"`
}

// CacheConfig configures the result cache backend.
type CacheConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	TTLHours      int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	KeyPrefix     string `yaml:"key_prefix" mapstructure:"key_prefix"`
	RedisAddr     string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("crawl.max_concurrent_sites", 2)
	v.SetDefault("crawl.keywords_per_site", 2)
	v.SetDefault("crawl.nav_timeout_secs", 30)
	v.SetDefault("crawl.selector_timeout_secs", 10)
	v.SetDefault("crawl.min_delay_ms", 1000)
	v.SetDefault("crawl.max_delay_ms", 3000)
	v.SetDefault("crawl.retry_attempts", 2)
	v.SetDefault("crawl.site_rps", 0.5)
	v.SetDefault("crawl.breaker_threshold", 3)
	v.SetDefault("crawl.breaker_reset_secs", 300)
	v.SetDefault("crawl.fallback_enabled", true)
	v.SetDefault("crawl.degraded_ttl_mins", 10)
	v.SetDefault("crawl.timeout_secs", 120)
	v.SetDefault("crawl.sites_file", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("cache.key_prefix", "crawl:questions:")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.sqlite_path", "crawler-cache.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by the given command mode
// ("crawl" or "serve").
func (c *Config) Validate(mode string) error {
	var missing []string

	if c.Crawl.MaxConcurrentSites <= 0 {
		missing = append(missing, "crawl.max_concurrent_sites must be positive")
	}
	if c.Crawl.KeywordsPerSite <= 0 {
		missing = append(missing, "crawl.keywords_per_site must be positive")
	}
	if c.Crawl.NavTimeoutSecs <= 0 {
		missing = append(missing, "crawl.nav_timeout_secs must be positive")
	}
	if c.Crawl.MinDelayMs < 0 || c.Crawl.MaxDelayMs < c.Crawl.MinDelayMs {
		missing = append(missing, "crawl.min_delay_ms/max_delay_ms must form a valid range")
	}
	if c.Crawl.DegradedTTLMins < 0 || c.Crawl.TimeoutSecs < 0 {
		missing = append(missing, "crawl.degraded_ttl_mins and crawl.timeout_secs must not be negative")
	}
	if c.Cache.TTLHours <= 0 {
		missing = append(missing, "cache.ttl_hours must be positive")
	}

	switch c.Cache.Driver {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			missing = append(missing, "cache.redis_addr is required")
		}
	case "sqlite":
		if c.Cache.SQLitePath == "" {
			missing = append(missing, "cache.sqlite_path is required")
		}
	case "postgres":
		if c.Cache.DatabaseURL == "" {
			missing = append(missing, "cache.database_url is required")
		}
	default:
		missing = append(missing, "cache.driver must be one of memory, redis, sqlite, postgres")
	}

	if mode == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		missing = append(missing, "server.port must be between 1 and 65535")
	}

	if len(missing) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
