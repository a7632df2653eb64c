package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env             string
	Port            int
	ShutdownTimeout time.Duration
	SSL             bool

	Board     BoardConfig
	Redis     RedisConfig
	Cache     CacheConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
	Exports   ExportsConfig
}

// BoardConfig locates the notice board document and the pages that consume it.
type BoardConfig struct {
	DataFile       string
	StaticDir      string
	Timezone       string
	WriteQueueSize int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles the redis read cache in front of the document.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig throttles mutating endpoints. A zero RPS disables the limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type MetricsConfig struct {
	Enabled bool
}

// ExportsConfig gates the CSV/PDF board export endpoint.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.ShutdownTimeout = parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second)
	cfg.SSL = v.GetBool("SSL")

	cfg.Board = BoardConfig{
		DataFile:       v.GetString("DATA_FILE"),
		StaticDir:      v.GetString("STATIC_DIR"),
		Timezone:       v.GetString("BOARD_TIMEZONE"),
		WriteQueueSize: v.GetInt("WRITE_QUEUE_SIZE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	burst := v.GetInt("RATE_LIMIT_BURST")
	if burst <= 0 {
		burst = 10
	}
	cfg.RateLimit = RateLimitConfig{
		RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
		Burst:             burst,
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("SSL", false)

	v.SetDefault("DATA_FILE", "./data.json")
	v.SetDefault("STATIC_DIR", "./public")
	v.SetDefault("BOARD_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("WRITE_QUEUE_SIZE", 64)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("ENABLE_METRICS", false)
	v.SetDefault("ENABLE_EXPORTS", false)
}

// viper reports a missing explicit config file as a plain fs error rather than
// ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
