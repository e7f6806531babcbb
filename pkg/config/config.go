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

// State backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Env        string
	Port       int
	APIPrefix  string
	EnableDocs bool

	State     StateConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Uploads   UploadConfig
	Generator GeneratorConfig
	Jobs      JobsConfig
	Events    EventsConfig
	Metrics   MetricsConfig
}

// StateConfig selects where the study state document is persisted.
type StateConfig struct {
	Backend  string
	Key      string
	FilePath string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	SQLitePath   string
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

// UploadConfig governs the file ingestion boundary.
type UploadConfig struct {
	Dir               string
	MaxFileSizeBytes  int64
	AllowedExtensions []string
}

// GeneratorConfig configures the remote question source. An empty APIKey disables it.
type GeneratorConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	NumQuestions   int
	Timeout        time.Duration
	MaxSourceChars int
	ExtractorURL   string
}

// Enabled reports whether a remote generator is configured.
func (g GeneratorConfig) Enabled() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

// JobsConfig tunes the background generation queue.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
}

// EventsConfig configures optional AMQP forwarding of state-change events.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

type MetricsConfig struct {
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.EnableDocs = v.GetBool("ENABLE_DOCS")

	cfg.State = StateConfig{
		Backend:  strings.ToLower(v.GetString("STATE_BACKEND")),
		Key:      v.GetString("STATE_KEY"),
		FilePath: v.GetString("STATE_FILE"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		SQLitePath:   v.GetString("SQLITE_PATH"),
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

	maxUpload := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 20 * 1024 * 1024
	}
	cfg.Uploads = UploadConfig{
		Dir:               v.GetString("UPLOAD_DIR"),
		MaxFileSizeBytes:  maxUpload,
		AllowedExtensions: splitAndTrim(strings.ToLower(v.GetString("UPLOAD_ALLOWED_EXTENSIONS"))),
	}

	apiKey := v.GetString("GENERATOR_API_KEY")
	if apiKey == "" {
		apiKey = v.GetString("GEMINI_API_KEY")
	}
	cfg.Generator = GeneratorConfig{
		APIKey:         apiKey,
		BaseURL:        v.GetString("GENERATOR_BASE_URL"),
		Model:          v.GetString("GENERATOR_MODEL"),
		NumQuestions:   v.GetInt("GENERATOR_NUM_QUESTIONS"),
		Timeout:        parseDuration(v.GetString("GENERATOR_TIMEOUT"), 60*time.Second),
		MaxSourceChars: v.GetInt("GENERATOR_MAX_SOURCE_CHARS"),
		ExtractorURL:   v.GetString("EXTRACTOR_URL"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
	}

	cfg.Events = EventsConfig{
		AMQPURL:  v.GetString("EVENTS_AMQP_URL"),
		Exchange: v.GetString("EVENTS_EXCHANGE"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 4000)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("ENABLE_DOCS", true)

	v.SetDefault("STATE_BACKEND", BackendFile)
	v.SetDefault("STATE_KEY", "mornoning_app_state_v1")
	v.SetDefault("STATE_FILE", "./data/state.json")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mornoningo")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "./data/mornoningo.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 4)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("UPLOAD_ALLOWED_EXTENSIONS", ".pdf,.pptx,.txt,.md")

	v.SetDefault("GENERATOR_API_KEY", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GENERATOR_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("GENERATOR_MODEL", "gemini-2.0-flash")
	v.SetDefault("GENERATOR_NUM_QUESTIONS", 5)
	v.SetDefault("GENERATOR_TIMEOUT", "60s")
	v.SetDefault("GENERATOR_MAX_SOURCE_CHARS", 8000)
	v.SetDefault("EXTRACTOR_URL", "")

	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_BUFFER_SIZE", 16)
	v.SetDefault("JOBS_MAX_RETRIES", 0)

	v.SetDefault("EVENTS_AMQP_URL", "")
	v.SetDefault("EVENTS_EXCHANGE", "mornoningo.events")

	v.SetDefault("ENABLE_METRICS", true)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
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
