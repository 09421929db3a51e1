// Package config wraps Viper with nil-safe accessors and loads the AdminList
// server configuration from a file, the environment, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. ADMINLIST_SERVER_PORT.
const EnvPrefix = "ADMINLIST"

// Config is a read-only view of a Viper instance. The zero value and a
// Config built from a nil Viper return zero values for every key.
type Config struct {
	v *viper.Viper
}

// New wraps v.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

func (c *Config) GetString(key string) string {
	if c == nil || c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

func (c *Config) GetInt(key string) int {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

func (c *Config) GetFloat64(key string) float64 {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetFloat64(key)
}

func (c *Config) GetBool(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

func (c *Config) IsSet(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subtree under key. A missing key yields an empty Config,
// never nil.
func (c *Config) Sub(key string) *Config {
	if c == nil || c.v == nil {
		return New(nil)
	}
	return New(c.v.Sub(key))
}

// Unmarshal decodes the whole configuration into target using mapstructure
// tags.
func (c *Config) Unmarshal(target any) error {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}

// Settings is the typed server configuration.
type Settings struct {
	Server   ServerSettings   `mapstructure:"server"`
	Store    StoreSettings    `mapstructure:"store"`
	Provider ProviderSettings `mapstructure:"provider"`
	NavState NavStateSettings `mapstructure:"navstate"`
	List     ListSettings     `mapstructure:"list"`
	Log      LogSettings      `mapstructure:"log"`
}

type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StoreSettings struct {
	Path string `mapstructure:"path"`
}

// ProviderSettings selects and tunes the data provider. Kind is "sqlite" or
// "rest". CacheSize 0 disables caching and RateLimit 0 disables throttling.
type ProviderSettings struct {
	Kind      string        `mapstructure:"kind"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst"`
	// LatestOnly drops the result of a request for a resource once a newer
	// request for the same resource has been issued.
	LatestOnly bool `mapstructure:"latest_only"`
}

// NavStateSettings selects where navigation state lives: "memory", "sqlite"
// or "redis".
type NavStateSettings struct {
	Kind      string        `mapstructure:"kind"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// ListSettings are the defaults of lists opened through the API.
type ListSettings struct {
	PerPage       int           `mapstructure:"per_page"`
	SortField     string        `mapstructure:"sort_field"`
	SortOrder     string        `mapstructure:"sort_order"`
	Debounce      time.Duration `mapstructure:"debounce"`
	PerPagePolicy string        `mapstructure:"per_page_policy"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	InboxSize     int           `mapstructure:"inbox_size"`
}

type LogSettings struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.path", "adminlist.db")
	v.SetDefault("provider.kind", "sqlite")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.retries", 2)
	v.SetDefault("provider.cache_size", 256)
	v.SetDefault("provider.cache_ttl", 30*time.Second)
	v.SetDefault("provider.rate_limit", 0)
	v.SetDefault("provider.rate_burst", 10)
	v.SetDefault("provider.latest_only", false)
	v.SetDefault("navstate.kind", "sqlite")
	v.SetDefault("navstate.redis_addr", "localhost:6379")
	v.SetDefault("navstate.redis_db", 0)
	v.SetDefault("navstate.ttl", 0)
	v.SetDefault("list.per_page", 10)
	v.SetDefault("list.sort_field", "id")
	v.SetDefault("list.sort_order", "ASC")
	v.SetDefault("list.debounce", 500*time.Millisecond)
	v.SetDefault("list.per_page_policy", "reset")
	v.SetDefault("list.fetch_timeout", 30*time.Second)
	v.SetDefault("list.inbox_size", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads the configuration file at path (optional; when empty,
// ./adminlist.yaml is used if present), applies ADMINLIST_* environment
// overrides and defaults, and returns both the raw and typed views.
func Load(path string) (*Config, *Settings, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("adminlist")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	return New(v), &s, nil
}

// Validate checks enumerated settings.
func (s *Settings) Validate() error {
	switch s.Provider.Kind {
	case "sqlite":
	case "rest":
		if s.Provider.BaseURL == "" {
			return errors.New("config: provider.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("config: unknown provider.kind %q", s.Provider.Kind)
	}
	switch s.NavState.Kind {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("config: unknown navstate.kind %q", s.NavState.Kind)
	}
	switch strings.ToLower(s.List.PerPagePolicy) {
	case "reset", "keep":
	default:
		return fmt.Errorf("config: unknown list.per_page_policy %q", s.List.PerPagePolicy)
	}
	return nil
}
