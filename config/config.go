package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	AppPort  string `mapstructure:"APP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	ProductsPerPage int    `mapstructure:"PRODUCTS_PER_PAGE"`
	UploadDir       string `mapstructure:"UPLOAD_DIR"`

	// --- cache ---
	CacheBackend  string `mapstructure:"CACHE_BACKEND"`
	CacheSize     int    `mapstructure:"CACHE_SIZE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// --- S3 ---
	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3Bucket          string `mapstructure:"S3_BUCKET"`
	S3AccessKey       string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey       string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL          bool   `mapstructure:"S3_USE_SSL"`
	S3PublicURL       string `mapstructure:"S3_PUBLIC_URL"`
	ImageMaxDimension int    `mapstructure:"IMAGE_MAX_DIMENSION"`
}

var defaults = map[string]any{
	"APP_ENV":             "prod",
	"APP_PORT":            ":3000",
	"LOG_LEVEL":           "info",
	"DB_HOST":             "localhost",
	"DB_PORT":             5432,
	"DB_USER":             "postgres",
	"DB_NAME":             "ecommerce",
	"DB_SSLMODE":          "disable",
	"PRODUCTS_PER_PAGE":   8,
	"UPLOAD_DIR":          "uploads",
	"CACHE_BACKEND":       "memory",
	"CACHE_SIZE":          1024,
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_DB":            0,
	"S3_REGION":           "us-east-1",
	"S3_BUCKET":           "products",
	"IMAGE_MAX_DIMENSION": 0,
}

// keys with no default still have to be bound for Unmarshal to see them
var unset = []string{
	"DB_PASSWORD", "REDIS_PASSWORD",
	"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_USE_SSL", "S3_PUBLIC_URL",
}

func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppEnv: %s\n", c.AppEnv))
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  LogLevel: %s\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
	sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
	sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
	sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
	sb.WriteString(fmt.Sprintf("  DBSSLMode: %s\n", c.DBSSLMode))
	sb.WriteString(masked("DBPassword", c.DBPassword))
	sb.WriteString(fmt.Sprintf("  ProductsPerPage: %d\n", c.ProductsPerPage))
	sb.WriteString(fmt.Sprintf("  UploadDir: %s\n", c.UploadDir))

	sb.WriteString(fmt.Sprintf("  CacheBackend: %s\n", c.CacheBackend))
	sb.WriteString(fmt.Sprintf("  CacheSize: %d\n", c.CacheSize))
	sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
	sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
	sb.WriteString(masked("RedisPassword", c.RedisPassword))

	sb.WriteString(fmt.Sprintf("  S3Endpoint: %s\n", c.S3Endpoint))
	sb.WriteString(fmt.Sprintf("  S3Region: %s\n", c.S3Region))
	sb.WriteString(fmt.Sprintf("  S3Bucket: %s\n", c.S3Bucket))
	sb.WriteString(masked("S3AccessKey", c.S3AccessKey))
	sb.WriteString(masked("S3SecretKey", c.S3SecretKey))
	sb.WriteString(fmt.Sprintf("  S3UseSSL: %v\n", c.S3UseSSL))
	sb.WriteString(fmt.Sprintf("  S3PublicURL: %s\n", c.S3PublicURL))
	sb.WriteString(fmt.Sprintf("  ImageMaxDimension: %d\n", c.ImageMaxDimension))
	return sb.String()
}

func masked(name, secret string) string {
	if secret == "" {
		return fmt.Sprintf("  %s: (empty)\n", name)
	}
	return fmt.Sprintf("  %s: ********\n", name)
}

// LoadFromEnv reads the configuration from the environment, loading a local
// .env first when one exists.
func LoadFromEnv() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for _, k := range unset {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case "memory", "lru", "redis":
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.CacheBackend == "lru" && c.CacheSize <= 0 {
		return errors.New("CACHE_SIZE must be positive for the lru backend")
	}
	if c.ProductsPerPage <= 0 {
		return errors.New("PRODUCTS_PER_PAGE must be positive")
	}
	return nil
}

func (c *Config) GetDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}
