package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	API       APIConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	Storage   StorageConfig
}

type ServerConfig struct {
	Port         string
	GinMode      string
	Environment  string
	BodyLimit    int64         // max JSON body size in bytes
	QueryTimeout time.Duration // upper bound for a request's database work
}

// IsDevelopment reports whether detailed error messages may be exposed.
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development"
}

type DatabaseConfig struct {
	Driver          string // mysql or postgres
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type APIConfig struct {
	Key            string
	DisableKeyAuth bool // honoured only in development
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Window        time.Duration
	Max           int
	ContactWindow time.Duration
	ContactMax    int
	UseRedis      bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

type StorageConfig struct {
	UploadsDir      string
	S3Region        string
	S3Bucket        string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

// S3Enabled reports whether images are served from a bucket instead of disk.
func (s StorageConfig) S3Enabled() bool {
	return s.S3Bucket != ""
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			GinMode:      getEnv("GIN_MODE", "debug"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			BodyLimit:    int64(parseInt(getEnv("BODY_LIMIT_BYTES", "10240"), 10240)),
			QueryTimeout: parseDuration(getEnv("QUERY_TIMEOUT", "30s"), 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "3306"),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "trouve_ton_artisan"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt(getEnv("DB_POOL_MAX", "5"), 5),
			MaxIdleConns:    parseInt(getEnv("DB_POOL_IDLE", "5"), 5),
			ConnMaxIdleTime: parseDuration(getEnv("DB_POOL_IDLE_TIMEOUT", "10s"), 10*time.Second),
			ConnMaxLifetime: parseDuration(getEnv("DB_POOL_MAX_LIFETIME", "30m"), 30*time.Minute),
		},
		API: APIConfig{
			Key:            getEnv("API_KEY", ""),
			DisableKeyAuth: getEnv("DISABLE_API_KEY", "false") == "true",
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("FRONTEND_URL", "http://localhost:3000")),
		},
		RateLimit: RateLimitConfig{
			Window:        parseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"), 15*time.Minute),
			Max:           parseInt(getEnv("RATE_LIMIT_MAX", "100"), 100),
			ContactWindow: parseDuration(getEnv("CONTACT_RATE_LIMIT_WINDOW", "1h"), time.Hour),
			ContactMax:    parseInt(getEnv("CONTACT_RATE_LIMIT_MAX", "5"), 5),
			UseRedis:      getEnv("RATE_LIMIT_REDIS", "false") == "true",
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "noreply@trouve-ton-artisan.fr"),
			Timeout:  parseDuration(getEnv("SMTP_TIMEOUT", "10s"), 10*time.Second),
		},
		Storage: StorageConfig{
			UploadsDir:      getEnv("UPLOADS_DIR", "./uploads"),
			S3Region:        getEnv("AWS_REGION", "eu-west-3"),
			S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
	}

	if config.API.Key == "" && !(config.Server.IsDevelopment() && config.API.DisableKeyAuth) {
		return nil, fmt.Errorf("API_KEY must be set")
	}

	return config, nil
}

// DSN builds the driver specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
		)
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%s", c.Host, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Collation = "utf8mb4_unicode_ci"
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
