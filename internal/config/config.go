// Package config provides centralized configuration. Defaults are overlaid
// by an optional YAML file (PADELY_CONFIG) and then by environment
// variables. Shared by cmd/api and cmd/padely.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	DefaultUpstreamBaseURL = "http://fredericosilva.net:8081/padely"
	DefaultRefreshInterval = 20 * time.Second
	DefaultSetWonDelay     = 3 * time.Second
	DefaultToastTTL        = 5 * time.Second
	DefaultUpstreamTimeout = 10 * time.Second
)

// DefaultProxies are CORS proxy prefixes tried after a failed direct call.
// Each prefix is followed by the URL-escaped target.
var DefaultProxies = []string{
	"https://corsproxy.io/?",
	"https://api.codetabs.com/v1/proxy?quest=",
	"https://cors-anywhere.herokuapp.com/",
}

// Preference keys in the key-value store.
const (
	FavoritesKey    = "padely_favorites"
	NameMappingsKey = "padely_player_name_mappings"
	FiltersKey      = "padely_filters"
)

// --------------------------------------------------------------------------
// Config struct
// --------------------------------------------------------------------------

type Config struct {
	// Upstream live-score API
	UpstreamBaseURL string        `yaml:"upstream_base_url"`
	UpstreamProxies []string      `yaml:"upstream_proxies"`
	UpstreamDirect  bool          `yaml:"upstream_direct"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	UpstreamRPM     int           `yaml:"upstream_rpm"`
	AssetBaseURL    string        `yaml:"asset_base_url"`

	// Live board
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	AutoRefresh     bool          `yaml:"auto_refresh"`
	SetWonDelay     time.Duration `yaml:"set_won_delay"`
	ToastTTL        time.Duration `yaml:"toast_ttl"`

	// Preferences storage. DatabaseURL empty means the JSON file is used.
	DatabaseURL    string        `yaml:"database_url"`
	DBPoolMinConns int           `yaml:"db_pool_min_conns"`
	DBPoolMaxConns int           `yaml:"db_pool_max_conns"`
	DBPoolMaxLife  time.Duration `yaml:"db_pool_max_life"`
	PrefsFile      string        `yaml:"prefs_file"`

	// API server
	APIHost     string `yaml:"api_host"`
	APIPort     int    `yaml:"api_port"`
	Environment string `yaml:"environment"` // development, staging, production
	Debug       bool   `yaml:"debug"`

	// CORS
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`

	// Rate limiting
	RateLimitEnabled  bool          `yaml:"rate_limit_enabled"`
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`

	// Cache
	CacheEnabled bool `yaml:"cache_enabled"`

	// Announcement text and speech (Gemini)
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
	TTSModel     string `yaml:"tts_model"`
	TTSVoice     string `yaml:"tts_voice"`

	// Audio clip storage. AudioBucket empty keeps clips in memory.
	AudioBucket        string        `yaml:"audio_bucket"`
	AudioEndpoint      string        `yaml:"audio_endpoint"`
	AudioRegion        string        `yaml:"audio_region"`
	AudioAccessKeyID   string        `yaml:"audio_access_key_id"`
	AudioSecretKey     string        `yaml:"audio_secret_key"`
	AudioPublicBaseURL string        `yaml:"audio_public_base_url"`
	AudioClipTTL       time.Duration `yaml:"audio_clip_ttl"`

	// Email sink
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	SMTPUser   string `yaml:"smtp_user"`
	SMTPPass   string `yaml:"smtp_pass"`
	EmailFrom  string `yaml:"email_from"`
	EmailTo    string `yaml:"email_to"`

	// Telegram sink
	TelegramBotToken string `yaml:"telegram_bot_token"`
	TelegramChatID   int64  `yaml:"telegram_chat_id"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		UpstreamBaseURL: DefaultUpstreamBaseURL,
		UpstreamProxies: append([]string(nil), DefaultProxies...),
		UpstreamDirect:  true,
		UpstreamTimeout: DefaultUpstreamTimeout,
		UpstreamRPM:     120,

		RefreshInterval: DefaultRefreshInterval,
		AutoRefresh:     true,
		SetWonDelay:     DefaultSetWonDelay,
		ToastTTL:        DefaultToastTTL,

		DBPoolMinConns: 1,
		DBPoolMaxConns: 4,
		DBPoolMaxLife:  30 * time.Minute,
		PrefsFile:      "padely_prefs.json",

		APIHost:     "0.0.0.0",
		APIPort:     8000,
		Environment: "development",

		CORSAllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},

		RateLimitEnabled:  true,
		RateLimitRequests: 300,
		RateLimitWindow:   60 * time.Second,

		CacheEnabled: true,

		GeminiModel: "gemini-2.5-flash",
		TTSModel:    "gemini-2.5-flash-preview-tts",
		TTSVoice:    "Kore",

		AudioRegion:  "auto",
		AudioClipTTL: 10 * time.Minute,

		SMTPPort: 587,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by PADELY_CONFIG, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("PADELY_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.UpstreamBaseURL = strings.TrimRight(envOr("PADELY_API_BASE_URL", c.UpstreamBaseURL), "/")
	c.UpstreamProxies = envList("PADELY_PROXIES", c.UpstreamProxies)
	c.UpstreamDirect = envBool("PADELY_DIRECT_FETCH", c.UpstreamDirect)
	c.UpstreamTimeout = envDuration("PADELY_API_TIMEOUT", c.UpstreamTimeout)
	c.UpstreamRPM = envInt("PADELY_API_RPM", c.UpstreamRPM)
	c.AssetBaseURL = envOr("PADELY_ASSET_BASE_URL", c.AssetBaseURL)

	c.RefreshInterval = envDuration("REFRESH_INTERVAL", c.RefreshInterval)
	c.AutoRefresh = envBool("AUTO_REFRESH", c.AutoRefresh)
	c.SetWonDelay = envDuration("SET_WON_DELAY", c.SetWonDelay)
	c.ToastTTL = envDuration("TOAST_TTL", c.ToastTTL)

	c.DatabaseURL = envOr("DATABASE_URL", c.DatabaseURL)
	c.DBPoolMinConns = envInt("DB_POOL_MIN_CONNS", c.DBPoolMinConns)
	c.DBPoolMaxConns = envInt("DB_POOL_MAX_CONNS", c.DBPoolMaxConns)
	c.DBPoolMaxLife = time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", int(c.DBPoolMaxLife/time.Minute))) * time.Minute
	c.PrefsFile = envOr("PREFS_FILE", c.PrefsFile)

	c.APIHost = envOr("API_HOST", c.APIHost)
	c.APIPort = envInt("API_PORT", envInt("PORT", c.APIPort))
	c.Environment = envOr("ENVIRONMENT", c.Environment)
	c.Debug = envBool("DEBUG", c.Debug)

	c.CORSAllowOrigins = envList("CORS_ALLOW_ORIGINS", c.CORSAllowOrigins)

	c.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", c.RateLimitEnabled)
	c.RateLimitRequests = envInt("RATE_LIMIT_REQUESTS", c.RateLimitRequests)
	c.RateLimitWindow = time.Duration(envInt("RATE_LIMIT_WINDOW", int(c.RateLimitWindow/time.Second))) * time.Second

	c.CacheEnabled = envBool("CACHE_ENABLED", c.CacheEnabled)

	c.GeminiAPIKey = envOr("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = envOr("GEMINI_MODEL", c.GeminiModel)
	c.TTSModel = envOr("GEMINI_TTS_MODEL", c.TTSModel)
	c.TTSVoice = envOr("GEMINI_TTS_VOICE", c.TTSVoice)

	c.AudioBucket = envOr("AUDIO_BUCKET", c.AudioBucket)
	c.AudioEndpoint = envOr("AUDIO_ENDPOINT", c.AudioEndpoint)
	c.AudioRegion = envOr("AUDIO_REGION", c.AudioRegion)
	c.AudioAccessKeyID = envOr("AUDIO_ACCESS_KEY_ID", c.AudioAccessKeyID)
	c.AudioSecretKey = envOr("AUDIO_SECRET_ACCESS_KEY", c.AudioSecretKey)
	c.AudioPublicBaseURL = envOr("AUDIO_PUBLIC_BASE_URL", c.AudioPublicBaseURL)
	c.AudioClipTTL = envDuration("AUDIO_CLIP_TTL", c.AudioClipTTL)

	c.SMTPServer = envOr("SMTP_SERVER", c.SMTPServer)
	c.SMTPPort = envInt("SMTP_PORT", c.SMTPPort)
	c.SMTPUser = envOr("SMTP_USER", c.SMTPUser)
	c.SMTPPass = envOr("SMTP_PASS", c.SMTPPass)
	c.EmailFrom = envOr("EMAIL_FROM", c.EmailFrom)
	c.EmailTo = envOr("EMAIL_TO", c.EmailTo)

	c.TelegramBotToken = envOr("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.TelegramChatID = envInt64("TELEGRAM_CHAT_ID", c.TelegramChatID)
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.UpstreamBaseURL == "" {
		return fmt.Errorf("PADELY_API_BASE_URL must be set")
	}
	if !c.UpstreamDirect && len(c.UpstreamProxies) == 0 {
		return fmt.Errorf("direct fetch disabled and no proxies configured")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.RefreshInterval)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout)
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("invalid API port %d", c.APIPort)
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EmailEnabled reports whether the SMTP sink is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPServer != "" && c.EmailTo != ""
}

// TelegramEnabled reports whether the Telegram sink is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("20s") or bare seconds ("20").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
