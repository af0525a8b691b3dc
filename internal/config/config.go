package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	OTLPEndpoint string
	OTLPProtocol string
	OtelEnabled  bool

	Forge   ForgeConfig
	Storage StorageConfig
	Redis   RedisConfig
	Invoice InvoiceConfig
	MCP     MCPConfig
}

type ForgeConfig struct {
	BaseURL  string
	Token    string
	ServerID int64
	Timeout  time.Duration
}

type StorageConfig struct {
	Driver string
	Root   string

	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string

	RedisPrefix string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	DBPath     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis endpoint is configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type InvoiceConfig struct {
	DueDays     int
	LogoTimeout time.Duration
}

type MCPConfig struct {
	Transport string
	HTTPAddr  string
}

const (
	StorageDisk     = "disk"
	StorageS3       = "s3"
	StorageRedis    = "redis"
	StorageDatabase = "database"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

var (
	ErrInvalidStorageDriver = errors.New("invalid_storage_driver")
	ErrInvalidTransport     = errors.New("invalid_transport")
)

// Load loads configuration from a .env file, an optional pike.yml and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("pike")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/pike")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppName:      strings.TrimSpace(v.GetString("app.service")),
		AppVersion:   strings.TrimSpace(v.GetString("app.version")),
		Environment:  strings.TrimSpace(v.GetString("environment")),
		OTLPEndpoint: strings.TrimSpace(v.GetString("otlp.endpoint")),
		OTLPProtocol: strings.ToLower(strings.TrimSpace(v.GetString("otlp.protocol"))),
		OtelEnabled:  v.GetBool("otel.enabled"),
		Forge: ForgeConfig{
			BaseURL:  strings.TrimRight(strings.TrimSpace(v.GetString("forge.base_url")), "/"),
			Token:    strings.TrimSpace(v.GetString("forge.token")),
			ServerID: v.GetInt64("forge.server_id"),
			Timeout:  v.GetDuration("forge.timeout"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
			Root:        strings.TrimSpace(v.GetString("storage.root")),
			S3Bucket:    strings.TrimSpace(v.GetString("storage.s3.bucket")),
			S3Region:    strings.TrimSpace(v.GetString("storage.s3.region")),
			S3Endpoint:  strings.TrimSpace(v.GetString("storage.s3.endpoint")),
			S3Prefix:    strings.Trim(strings.TrimSpace(v.GetString("storage.s3.prefix")), "/"),
			RedisPrefix: strings.TrimSpace(v.GetString("storage.redis.prefix")),
			DBType:      strings.ToLower(strings.TrimSpace(v.GetString("database.type"))),
			DBHost:      v.GetString("database.host"),
			DBPort:      v.GetString("database.port"),
			DBName:      v.GetString("database.name"),
			DBUser:      v.GetString("database.user"),
			DBPassword:  v.GetString("database.password"),
			DBSSLMode:   v.GetString("database.sslmode"),
			DBPath:      v.GetString("database.path"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("redis.addr")),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Invoice: InvoiceConfig{
			DueDays:     v.GetInt("invoice.due_days"),
			LogoTimeout: v.GetDuration("invoice.logo_timeout"),
		},
		MCP: MCPConfig{
			Transport: strings.ToLower(strings.TrimSpace(v.GetString("mcp.transport"))),
			HTTPAddr:  strings.TrimSpace(v.GetString("mcp.http_addr")),
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.service", "pike")
	v.SetDefault("app.version", "0.0.1")
	v.SetDefault("environment", "development")
	v.SetDefault("otlp.endpoint", "localhost:4317")
	v.SetDefault("otlp.protocol", "grpc")
	v.SetDefault("otel.enabled", false)

	v.SetDefault("forge.base_url", "https://forge.laravel.com/api/v1")
	v.SetDefault("forge.timeout", 30*time.Second)

	v.SetDefault("storage.driver", StorageDisk)
	v.SetDefault("storage.root", "storage/app")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.redis.prefix", "pike:blob:")

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "pike")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "pike.db")

	v.SetDefault("redis.db", 0)

	v.SetDefault("invoice.due_days", 30)
	v.SetDefault("invoice.logo_timeout", 10*time.Second)

	v.SetDefault("mcp.transport", TransportStdio)
	v.SetDefault("mcp.http_addr", ":8080")
}

func validate(cfg Config) error {
	switch cfg.Storage.Driver {
	case StorageDisk, StorageS3, StorageRedis, StorageDatabase:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStorageDriver, cfg.Storage.Driver)
	}
	switch cfg.MCP.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransport, cfg.MCP.Transport)
	}
	return nil
}
