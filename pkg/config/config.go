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

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Env             string
	Port            int
	APIPrefix       string
	StaticDir       string
	ShutdownTimeout time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	Events   EventsConfig
	Storage  StorageConfig
	CORS     CORSConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	URL          string
	Driver       string
	User         string
	Password     string
	MaxOpenConns int
	MaxIdleConns int
}

// Embedded reports whether the in-memory fallback database should be used.
func (c DatabaseConfig) Embedded() bool {
	return isMissingOrPlaceholder(c.URL)
}

// DriverName resolves the SQL driver, inferring it from the URL when unset.
func (c DatabaseConfig) DriverName() string {
	if c.Embedded() {
		return DriverSQLite
	}
	if d := strings.ToLower(strings.TrimSpace(c.Driver)); d != "" {
		switch {
		case strings.Contains(d, "postgres"):
			return DriverPostgres
		case strings.Contains(d, "mysql"):
			return DriverMySQL
		case strings.Contains(d, "sqlite"):
			return DriverSQLite
		}
		return d
	}
	url := strings.ToLower(c.URL)
	if strings.Contains(url, "@tcp(") || strings.HasPrefix(url, "mysql") {
		return DriverMySQL
	}
	return DriverPostgres
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// EventsConfig tunes the moderation event publisher.
type EventsConfig struct {
	QueueKey   string
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// StorageConfig controls where uploads land and how downloads are signed.
type StorageConfig struct {
	Dir              string
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = "/" + strings.Trim(v.GetString("API_PREFIX"), "/")
	cfg.StaticDir = v.GetString("STATIC_DIR")
	cfg.ShutdownTimeout = parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second)

	cfg.Database = DatabaseConfig{
		URL:          firstNonEmpty(v.GetString("DATABASE_URL"), v.GetString("SPRING_DATASOURCE_URL")),
		Driver:       firstNonEmpty(v.GetString("DB_DRIVER"), v.GetString("SPRING_DATASOURCE_DRIVER")),
		User:         firstNonEmpty(v.GetString("DB_USER"), v.GetString("SPRING_DATASOURCE_USERNAME")),
		Password:     firstNonEmpty(v.GetString("DB_PASSWORD"), v.GetString("SPRING_DATASOURCE_PASSWORD")),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = v.GetInt("SPRING_DATASOURCE_MAX_POOL")
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Events = EventsConfig{
		QueueKey:   v.GetString("EVENTS_QUEUE_KEY"),
		Workers:    v.GetInt("EVENTS_WORKERS"),
		MaxRetries: v.GetInt("EVENTS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("EVENTS_RETRY_DELAY"), time.Second),
	}

	maxSize := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxSize <= 0 {
		maxSize = 20 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		Dir:              v.GetString("STORAGE_DIR"),
		MaxFileSizeBytes: maxSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOAD_ALLOWED_MIME_TYPES")),
		SignedURLSecret:  v.GetString("SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("SIGNED_URL_TTL"), 30*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("STATIC_DIR", "./public")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_DRIVER", "")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("EVENTS_QUEUE_KEY", "materials:events")
	v.SetDefault("EVENTS_WORKERS", 1)
	v.SetDefault("EVENTS_MAX_RETRIES", 3)
	v.SetDefault("EVENTS_RETRY_DELAY", "1s")

	v.SetDefault("STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("UPLOAD_ALLOWED_MIME_TYPES", "application/pdf,image/png,image/jpeg,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/vnd.ms-powerpoint,application/vnd.openxmlformats-officedocument.presentationml.presentation,application/zip,text/plain")
	v.SetDefault("SIGNED_URL_SECRET", "dev_materials_secret")
	v.SetDefault("SIGNED_URL_TTL", "30m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// isMissingOrPlaceholder treats blank URLs and template values as unset.
func isMissingOrPlaceholder(url string) bool {
	if strings.TrimSpace(url) == "" {
		return true
	}
	lower := strings.ToLower(url)
	for _, marker := range []string{"<", "your_", "mysql_host", "placeholder"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// isNotExist reports whether err is the fs error viper returns for a missing .env file.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
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
