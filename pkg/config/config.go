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

// Store drivers understood by the record store factory.
const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// DefaultCampuses lists the campuses participating in the challenge.
var DefaultCampuses = []string{
	"Lemley Memorial",
	"Broken Arrow",
	"Owasso",
	"Peoria",
	"Riverside",
	"Sand Springs",
	"Health Sciences Center",
}

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Store     StoreConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Log       LogConfig
	Challenge ChallengeConfig
	Cache     CacheConfig
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// StoreConfig selects the backend holding the challenge document.
type StoreConfig struct {
	Driver     string
	SQLitePath string
	DocumentID string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AdminConfig holds the single audit account. PasswordHash wins over Password when both are set.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ChallengeConfig captures the submission rules of the running challenge.
type ChallengeConfig struct {
	StartDate          string
	EndDate            string
	MinSteps           int
	LeaderboardSize    int
	Campuses           []string
	MaxScreenshotBytes int64
}

// CacheConfig governs leaderboard caching in Redis.
type CacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	Namespace string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DB_URL"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Store = StoreConfig{
		Driver:     strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		SQLitePath: v.GetString("STORE_SQLITE_PATH"),
		DocumentID: v.GetString("STORE_DOCUMENT_ID"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 8*time.Hour),
	}

	cfg.Admin = AdminConfig{
		Username:     v.GetString("ADMIN_USERNAME"),
		Password:     v.GetString("ADMIN_PASSWORD"),
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	campuses := splitAndTrim(v.GetString("CHALLENGE_CAMPUSES"))
	if len(campuses) == 0 {
		campuses = append([]string(nil), DefaultCampuses...)
	}
	maxScreenshot := v.GetInt64("MAX_SCREENSHOT_BYTES")
	if maxScreenshot <= 0 {
		maxScreenshot = 8 * 1024 * 1024
	}
	cfg.Challenge = ChallengeConfig{
		StartDate:          v.GetString("CHALLENGE_START_DATE"),
		EndDate:            v.GetString("CHALLENGE_END_DATE"),
		MinSteps:           v.GetInt("CHALLENGE_MIN_STEPS"),
		LeaderboardSize:    v.GetInt("LEADERBOARD_SIZE"),
		Campuses:           campuses,
		MaxScreenshotBytes: maxScreenshot,
	}

	cfg.Cache = CacheConfig{
		Enabled:   v.GetBool("ENABLE_LEADERBOARD_CACHE"),
		TTL:       parseDuration(v.GetString("LEADERBOARD_CACHE_TTL"), time.Minute),
		Namespace: v.GetString("LEADERBOARD_CACHE_NAMESPACE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "step_challenge")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("STORE_DRIVER", StoreDriverMemory)
	v.SetDefault("STORE_SQLITE_PATH", "./step_challenge.db")
	v.SetDefault("STORE_DOCUMENT_ID", "students")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "8h")

	v.SetDefault("ADMIN_USERNAME", "Student Advisory")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CHALLENGE_START_DATE", "2026-01-01")
	v.SetDefault("CHALLENGE_END_DATE", "2026-12-31")
	v.SetDefault("CHALLENGE_MIN_STEPS", 1000)
	v.SetDefault("LEADERBOARD_SIZE", 10)
	v.SetDefault("CHALLENGE_CAMPUSES", "")
	v.SetDefault("MAX_SCREENSHOT_BYTES", 8*1024*1024)

	v.SetDefault("ENABLE_LEADERBOARD_CACHE", false)
	v.SetDefault("LEADERBOARD_CACHE_TTL", "1m")
	v.SetDefault("LEADERBOARD_CACHE_NAMESPACE", "step-challenge:leaderboard:")
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
