package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   Server
	Database Database
	Auth     Auth
	Storage  Storage
	Cache    Cache
	Pricing  Pricing
	Logging  Logging
}

type Server struct {
	Port         string   `envconfig:"PORT" default:"8080"`
	AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"*"`
	SwaggerSpec  string   `envconfig:"SWAGGER_SPEC" default:"docs/swagger.yaml"`
}

type Database struct {
	URL             string        `envconfig:"DATABASE_URL" required:"true"`
	StoreTimeout    time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
}

type Auth struct {
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL         time.Duration `envconfig:"JWT_TTL" default:"24h"`
	GoogleAudience string        `envconfig:"GOOGLE_AUDIENCE"`
}

type Storage struct {
	Endpoint              string `envconfig:"MINIO_ENDPOINT"`
	AccessKey             string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey             string `envconfig:"MINIO_SECRET_KEY"`
	UseSSL                bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	Bucket                string `envconfig:"MINIO_BUCKET_DESTINATIONS" default:"travel-destinations"`
	PublicURL             string `envconfig:"MINIO_PUBLIC_URL"`
	ThumbnailMaxBytes     int64  `envconfig:"THUMBNAIL_MAX_BYTES" default:"2097152"`
	ThumbnailMaxDimension int    `envconfig:"THUMBNAIL_MAX_DIMENSION" default:"3840"`
}

// Enabled reports whether thumbnail uploads have somewhere to go.
func (s Storage) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

type Cache struct {
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	LookupCacheTTL time.Duration `envconfig:"LOOKUP_CACHE_TTL" default:"10m"`
}

type Pricing struct {
	DiscountMinParticipants int    `envconfig:"DISCOUNT_MIN_PARTICIPANTS" default:"3"`
	DiscountRateRaw         string `envconfig:"DISCOUNT_RATE" default:"0.10"`

	DiscountRate decimal.Decimal `ignored:"true"`
}

type Logging struct {
	Level           string `envconfig:"LOG_LEVEL" default:"info"`
	LogstashTCPAddr string `envconfig:"LOGSTASH_TCP_ADDR"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Database.URL == "" {
		return Config{}, errors.New("DATABASE_URL is empty")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is empty")
	}

	rate, err := decimal.NewFromString(cfg.Pricing.DiscountRateRaw)
	if err != nil {
		return Config{}, fmt.Errorf("DISCOUNT_RATE: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("DISCOUNT_RATE must be between 0 and 1, got %s", rate)
	}
	cfg.Pricing.DiscountRate = rate

	if cfg.Pricing.DiscountMinParticipants < 1 {
		return Config{}, errors.New("DISCOUNT_MIN_PARTICIPANTS must be at least 1")
	}
	if cfg.Database.StoreTimeout <= 0 {
		return Config{}, errors.New("STORE_TIMEOUT must be positive")
	}
	return cfg, nil
}
