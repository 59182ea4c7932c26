package config

import (
	"errors"
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
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Extractor ExtractorConfig
	Pipeline  PipelineConfig
	Exports   ExportsConfig
	Cache     CacheConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ExtractorConfig points at the external document extraction service.
type ExtractorConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PipelineConfig tunes processing job behaviour. MaxGroupSize bounds the
// per-batch file count a client may request; MaxConcurrentJobs is the
// system-wide cap on jobs executing at once.
type PipelineConfig struct {
	MaxGroupSize      int
	DefaultGroupSize  int
	MaxConcurrentJobs int
	QueueBuffer       int
	UploadDir         string
}

// ExportsConfig configures export artifact storage and download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// CacheConfig toggles read-path caching for stats endpoints.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Extractor = ExtractorConfig{
		BaseURL: v.GetString("EXTRACTOR_BASE_URL"),
		Timeout: parseDuration(v.GetString("EXTRACTOR_TIMEOUT"), 2*time.Minute),
	}

	cfg.Pipeline = PipelineConfig{
		MaxGroupSize:      v.GetInt("PIPELINE_MAX_GROUP_SIZE"),
		DefaultGroupSize:  v.GetInt("PIPELINE_DEFAULT_GROUP_SIZE"),
		MaxConcurrentJobs: v.GetInt("PIPELINE_MAX_CONCURRENT_JOBS"),
		QueueBuffer:       v.GetInt("PIPELINE_QUEUE_BUFFER"),
		UploadDir:         v.GetString("PIPELINE_UPLOAD_DIR"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		ResultTTL:       parseDuration(v.GetString("EXPORTS_RESULT_TTL"), 7*24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "pdf2csv_user")
	v.SetDefault("DB_NAME", "pdf2csv_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EXTRACTOR_BASE_URL", "http://localhost:9090")

	v.SetDefault("PIPELINE_MAX_GROUP_SIZE", 100)
	v.SetDefault("PIPELINE_DEFAULT_GROUP_SIZE", 25)
	v.SetDefault("PIPELINE_MAX_CONCURRENT_JOBS", 3)
	v.SetDefault("PIPELINE_QUEUE_BUFFER", 64)
	v.SetDefault("PIPELINE_UPLOAD_DIR", "./uploads")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")

	v.SetDefault("ENABLE_CACHE", false)
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
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
