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

// Import default policies for blank or placeholder numeric cells.
const (
	ImportPolicyZero        = "zero"
	ImportPolicyPlaceholder = "placeholder"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Admin       AdminConfig
	CORS        CORSConfig
	Log         LogConfig
	Import      ImportConfig
	StatusCheck StatusCheckConfig
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

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AdminConfig holds the administrator seeded at startup.
type AdminConfig struct {
	Username string
	Password string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ImportConfig tunes the CSV reconciliation endpoint.
type ImportConfig struct {
	DefaultPolicy    string
	DefaultGPA       *float64
	DefaultIncome    *int64
	MaxFileSizeBytes int64
	ArchiveDir       string
	ArchiveRetention time.Duration
}

// StatusCheckConfig governs the public status lookup endpoint.
type StatusCheckConfig struct {
	CacheEnabled   bool
	CacheTTL       time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
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
		URL:          v.GetString("DATABASE_URL"),
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

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Admin = AdminConfig{
		Username: strings.TrimSpace(v.GetString("ADMIN_USERNAME")),
		Password: v.GetString("ADMIN_PASSWORD"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxImportSize := v.GetInt64("IMPORT_MAX_FILE_SIZE")
	if maxImportSize <= 0 {
		maxImportSize = 5 * 1024 * 1024
	}
	cfg.Import = ImportConfig{
		DefaultPolicy:    normalizePolicy(v.GetString("IMPORT_DEFAULT_POLICY")),
		DefaultGPA:       optionalFloat(v, "IMPORT_DEFAULT_GPA"),
		DefaultIncome:    optionalInt(v, "IMPORT_DEFAULT_INCOME"),
		MaxFileSizeBytes: maxImportSize,
		ArchiveDir:       v.GetString("IMPORT_ARCHIVE_DIR"),
		ArchiveRetention: parseDuration(v.GetString("IMPORT_ARCHIVE_RETENTION"), 30*24*time.Hour),
	}

	cfg.StatusCheck = StatusCheckConfig{
		CacheEnabled:   v.GetBool("ENABLE_STATUS_CACHE"),
		CacheTTL:       parseDuration(v.GetString("STATUS_CACHE_TTL"), 5*time.Minute),
		RateLimitRPS:   v.GetFloat64("STATUS_RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("STATUS_RATE_LIMIT_BURST"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "beasiswa")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "beasiswa-status-api")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("IMPORT_DEFAULT_POLICY", ImportPolicyZero)
	v.SetDefault("IMPORT_DEFAULT_GPA", "")
	v.SetDefault("IMPORT_DEFAULT_INCOME", "")
	v.SetDefault("IMPORT_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("IMPORT_ARCHIVE_DIR", "")
	v.SetDefault("IMPORT_ARCHIVE_RETENTION", "720h")

	v.SetDefault("ENABLE_STATUS_CACHE", false)
	v.SetDefault("STATUS_CACHE_TTL", "5m")
	v.SetDefault("STATUS_RATE_LIMIT_RPS", 5)
	v.SetDefault("STATUS_RATE_LIMIT_BURST", 10)
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

func normalizePolicy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ImportPolicyPlaceholder:
		return ImportPolicyPlaceholder
	default:
		return ImportPolicyZero
	}
}

// optionalFloat returns nil when the key is unset so the policy default applies.
func optionalFloat(v *viper.Viper, key string) *float64 {
	if strings.TrimSpace(v.GetString(key)) == "" {
		return nil
	}
	f := v.GetFloat64(key)
	return &f
}

func optionalInt(v *viper.Viper, key string) *int64 {
	if strings.TrimSpace(v.GetString(key)) == "" {
		return nil
	}
	i := v.GetInt64(key)
	return &i
}
