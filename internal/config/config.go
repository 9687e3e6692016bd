package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Providers  ProvidersConfig  `yaml:"providers" mapstructure:"providers"`
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	Audience   AudienceConfig   `yaml:"audience" mapstructure:"audience"`
	Structured StructuredConfig `yaml:"structured" mapstructure:"structured"`
	Seasonal   SeasonalConfig   `yaml:"seasonal" mapstructure:"seasonal"`
	Geo        GeoConfig        `yaml:"geo" mapstructure:"geo"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Warm       WarmConfig       `yaml:"warm" mapstructure:"warm"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CacheConfig selects and configures the key-value cache backend.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Prefix      string `yaml:"prefix" mapstructure:"prefix"`
	RedisURL    string `yaml:"redis_url" mapstructure:"redis_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	Model      string `yaml:"model" mapstructure:"model"`
	MaxRetries int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// ProvidersConfig selects the primary community-data provider.
type ProvidersConfig struct {
	Primary           string `yaml:"primary" mapstructure:"primary"`
	StructuredBackend string `yaml:"structured_backend" mapstructure:"structured_backend"`
}

// PlacesConfig tunes the place-search fan-out, filters and ranking.
type PlacesConfig struct {
	SearchRadiusM   float64 `yaml:"search_radius_m" mapstructure:"search_radius_m"`
	AnchorOffsetKM  float64 `yaml:"anchor_offset_km" mapstructure:"anchor_offset_km"`
	MaxDistanceKM   float64 `yaml:"max_distance_km" mapstructure:"max_distance_km"`
	MaxResults      int     `yaml:"max_results" mapstructure:"max_results"`
	PoolSize        int     `yaml:"pool_size" mapstructure:"pool_size"`
	PoolTTLDays     int     `yaml:"pool_ttl_days" mapstructure:"pool_ttl_days"`
	DistanceWeight  float64 `yaml:"distance_weight" mapstructure:"distance_weight"`
	DistanceCapKM   float64 `yaml:"distance_cap_km" mapstructure:"distance_cap_km"`
	DetailsTTLHours int     `yaml:"details_ttl_hours" mapstructure:"details_ttl_hours"`
}

// AudienceConfig configures audience augmentation.
type AudienceConfig struct {
	DeltaTTLHours int `yaml:"delta_ttl_hours" mapstructure:"delta_ttl_hours"`
}

// StructuredConfig configures the structured-text provider.
type StructuredConfig struct {
	CategoryTTLDays int     `yaml:"category_ttl_days" mapstructure:"category_ttl_days"`
	MaxTokens       int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature     float64 `yaml:"temperature" mapstructure:"temperature"`
}

// SeasonalConfig configures seasonal query blending.
type SeasonalConfig struct {
	MaxCategories int `yaml:"max_categories" mapstructure:"max_categories"`
}

// GeoConfig points at the location dataset.
type GeoConfig struct {
	DatasetPath string `yaml:"dataset_path" mapstructure:"dataset_path"`
}

// CatalogConfig optionally overrides the embedded category catalog.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// WarmConfig configures scheduled pool warming.
type WarmConfig struct {
	Schedule string   `yaml:"schedule" mapstructure:"schedule"`
	Zips     []string `yaml:"zips" mapstructure:"zips"`
}

// Load reads configuration from .env, ./config.yaml and the environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches
// the working directory and tolerates a missing file; an explicit path
// must exist.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("COMMUNITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.prefix", "community")
	v.SetDefault("cache.sqlite_path", "community-cache.db")
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("google.rate_limit", 10)
	v.SetDefault("google.timeout_secs", 10)
	v.SetDefault("google.max_attempts", 3)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_retries", 2)
	v.SetDefault("providers.primary", "places")
	v.SetDefault("providers.structured_backend", "perplexity")
	v.SetDefault("places.search_radius_m", 12000)
	v.SetDefault("places.anchor_offset_km", 9)
	v.SetDefault("places.max_distance_km", 40)
	v.SetDefault("places.max_results", 20)
	v.SetDefault("places.pool_size", 60)
	v.SetDefault("places.pool_ttl_days", 62)
	v.SetDefault("places.distance_weight", 0.35)
	v.SetDefault("places.distance_cap_km", 30)
	v.SetDefault("places.details_ttl_hours", 720)
	v.SetDefault("audience.delta_ttl_hours", 12)
	v.SetDefault("structured.category_ttl_days", 90)
	v.SetDefault("structured.max_tokens", 2500)
	v.SetDefault("structured.temperature", 0.2)
	v.SetDefault("seasonal.max_categories", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("warm.schedule", "5 0 1 * *")
	v.SetDefault("warm.zips", []string{})

	// Empty defaults register the keys so AutomaticEnv can override them.
	for _, key := range []string{
		"google.key", "perplexity.key", "anthropic.key",
		"cache.redis_url", "cache.database_url",
		"geo.dataset_path", "catalog.path",
	} {
		v.SetDefault(key, "")
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case "memory", "redis", "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown cache.driver %q", c.Cache.Driver)
	}
	switch c.Providers.Primary {
	case "places", "structured":
	default:
		return eris.Errorf("config: unknown providers.primary %q", c.Providers.Primary)
	}
	switch c.Providers.StructuredBackend {
	case "perplexity", "anthropic":
	default:
		return eris.Errorf("config: unknown providers.structured_backend %q", c.Providers.StructuredBackend)
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
