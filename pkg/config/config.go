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

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const (
	UpsertModeNative = "native"
	UpsertModeCheck  = "check"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database       DatabaseConfig
	RemoteDatabase RemoteDatabaseConfig
	Redis          RedisConfig
	CORS           CORSConfig
	Log            LogConfig
	Sync           SyncConfig
	Reports        ReportsConfig
}

// DatabaseConfig describes the local results store.
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// RemoteDatabaseConfig describes the Campus Dynamics MySQL source.
type RemoteDatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	Timeout      time.Duration
	MaxOpenConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	// KeyPrefix namespaces report cache keys.
	KeyPrefix string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SyncConfig tunes remote-to-local result synchronisation.
type SyncConfig struct {
	RangeLimit      int
	MinRangeLimit   int
	MaxRangeLimit   int
	UpsertMode      string
	MinAcademicYear string
	Workers         int
	LockTTL         time.Duration
}

// ReportsConfig tunes academic summary reporting.
type ReportsConfig struct {
	MaxSemesterLoad int
	CacheEnabled    bool
	CacheTTL        time.Duration
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
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}
	if cfg.Database.Driver != DriverPostgres {
		cfg.Database.Driver = DriverMySQL
	}

	cfg.RemoteDatabase = RemoteDatabaseConfig{
		Host:         v.GetString("REMOTE_DB_HOST"),
		Port:         v.GetInt("REMOTE_DB_PORT"),
		User:         v.GetString("REMOTE_DB_USER"),
		Password:     v.GetString("REMOTE_DB_PASSWORD"),
		Name:         v.GetString("REMOTE_DB_NAME"),
		Timeout:      parseDuration(v.GetString("REMOTE_DB_TIMEOUT"), 10*time.Second),
		MaxOpenConns: v.GetInt("REMOTE_DB_MAX_OPEN_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:   v.GetBool("ENABLE_REDIS"),
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		KeyPrefix: strings.TrimSuffix(strings.TrimSpace(v.GetString("REDIS_KEY_PREFIX")), ":"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	upsertMode := strings.ToLower(v.GetString("SYNC_UPSERT_MODE"))
	if upsertMode != UpsertModeCheck {
		upsertMode = UpsertModeNative
	}
	cfg.Sync = SyncConfig{
		RangeLimit:      v.GetInt("SYNC_RANGE_LIMIT"),
		MinRangeLimit:   v.GetInt("SYNC_MIN_RANGE_LIMIT"),
		MaxRangeLimit:   v.GetInt("SYNC_MAX_RANGE_LIMIT"),
		UpsertMode:      upsertMode,
		MinAcademicYear: strings.TrimSpace(v.GetString("SYNC_MIN_ACADEMIC_YEAR")),
		Workers:         v.GetInt("SYNC_WORKERS"),
		LockTTL:         parseDuration(v.GetString("SYNC_LOCK_TTL"), 2*time.Hour),
	}

	cfg.Reports = ReportsConfig{
		MaxSemesterLoad: v.GetInt("REPORTS_MAX_SEMESTER_LOAD"),
		CacheEnabled:    v.GetBool("ENABLE_REPORT_CACHE"),
		CacheTTL:        parseDuration(v.GetString("REPORTS_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "mru_main")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REMOTE_DB_HOST", "localhost")
	v.SetDefault("REMOTE_DB_PORT", 3306)
	v.SetDefault("REMOTE_DB_USER", "root")
	v.SetDefault("REMOTE_DB_PASSWORD", "")
	v.SetDefault("REMOTE_DB_NAME", "campus_dynamics")
	v.SetDefault("REMOTE_DB_TIMEOUT", "10s")
	v.SetDefault("REMOTE_DB_MAX_OPEN_CONNS", 4)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "mru")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SYNC_RANGE_LIMIT", 1000)
	v.SetDefault("SYNC_MIN_RANGE_LIMIT", 100)
	v.SetDefault("SYNC_MAX_RANGE_LIMIT", 10000)
	v.SetDefault("SYNC_UPSERT_MODE", UpsertModeNative)
	v.SetDefault("SYNC_MIN_ACADEMIC_YEAR", "")
	v.SetDefault("SYNC_WORKERS", 1)
	v.SetDefault("SYNC_LOCK_TTL", "2h")

	v.SetDefault("REPORTS_MAX_SEMESTER_LOAD", 6)
	v.SetDefault("ENABLE_REPORT_CACHE", false)
	v.SetDefault("REPORTS_CACHE_TTL", "5m")
}

// isMissingFile tolerates an absent .env when SetConfigFile is used, which
// viper reports as a plain fs error rather than ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory") ||
		strings.Contains(err.Error(), "cannot find the file")
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
