package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Destination is a commute target for the durations processor.
type Destination struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	SearchesFile  string `mapstructure:"searches_file"`
	NotifiersFile string `mapstructure:"notifiers_file"`

	PollIntervalSeconds   int64         `mapstructure:"poll_interval"`
	PollInterval          time.Duration `mapstructure:"-"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	MaxConcurrentSources  int           `mapstructure:"max_concurrent_sources"`
	MaxPages              int           `mapstructure:"max_pages"`

	StorageType string `mapstructure:"storage_type"`
	BBoltPath   string `mapstructure:"bbolt_path"`

	LocationCachePath          string        `mapstructure:"location_cache_path"`
	LocationVerifyIntervalDays int64         `mapstructure:"location_verify_interval_days"`
	LocationVerifyInterval     time.Duration `mapstructure:"-"`

	ExcludeTitles    []string `mapstructure:"exclude_titles"`
	ExcludeAreaNames []string `mapstructure:"exclude_area_names"`
	ExcludePostcodes []string `mapstructure:"exclude_postcodes"`
	PriceMin         int      `mapstructure:"price_min"`
	PriceMax         int      `mapstructure:"price_max"`
	SizeMin          int      `mapstructure:"size_min"`
	SizeMax          int      `mapstructure:"size_max"`
	RoomsMin         int      `mapstructure:"rooms_min"`
	RoomsMax         int      `mapstructure:"rooms_max"`

	MessageFormat string `mapstructure:"message_format"`

	GMapsEnabled      bool          `mapstructure:"gmaps_enabled"`
	GMapsAPIKey       string        `mapstructure:"gmaps_api_key"`
	GMapsDestinations []Destination `mapstructure:"gmaps_destinations"`

	LLMEnabled      bool     `mapstructure:"llm_enabled"`
	LLMAPIKey       string   `mapstructure:"llm_api_key"`
	LLMModel        string   `mapstructure:"llm_model"`
	LLMPriorities   []string `mapstructure:"llm_priorities"`
	LLMDealbreakers []string `mapstructure:"llm_dealbreakers"`
}

const defaultMessageFormat = "{title}\nRooms: {rooms}\nSize: {size}\nPrice: {price}\n\n{url}"

// DefaultMessageFormat returns the fallback notification template.
func DefaultMessageFormat() string { return defaultMessageFormat }

// Load reads configuration from the optional configs/hunter.yaml file and
// environment variables. Environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "letscout")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("searches_file", "./configs/searches.yaml")
	v.SetDefault("notifiers_file", "./configs/notifiers.yaml")
	v.SetDefault("poll_interval", 300) // seconds
	v.SetDefault("request_timeout_seconds", 15)
	v.SetDefault("max_concurrent_sources", 4)
	v.SetDefault("max_pages", 1)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/listings.db")
	v.SetDefault("location_cache_path", "./data/locations.json")
	v.SetDefault("location_verify_interval_days", 7)
	v.SetDefault("message_format", defaultMessageFormat)
	v.SetDefault("llm_model", "claude-haiku-4-5")

	v.SetConfigName("hunter")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.PollIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid poll_interval (must be positive seconds)")
	}
	cfg.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.MaxConcurrentSources <= 0 {
		return nil, fmt.Errorf("invalid max_concurrent_sources (must be positive)")
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}

	if cfg.LocationVerifyIntervalDays <= 0 {
		return nil, fmt.Errorf("invalid location_verify_interval_days (must be positive)")
	}
	cfg.LocationVerifyInterval = time.Duration(cfg.LocationVerifyIntervalDays) * 24 * time.Hour

	if cfg.MessageFormat == "" {
		cfg.MessageFormat = defaultMessageFormat
	}

	return &cfg, nil
}
