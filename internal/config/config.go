package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Retention RetentionConfig
	Archive   ArchiveConfig
	Keycloak  KeycloakConfig
	Admin     AdminConfig
	KeepAlive KeepAliveConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig selects the storage backend and bounds every call made to it.
type StoreConfig struct {
	Backend           string // mongo|sqlite|memory
	OperationTimeout  time.Duration
	StartupRetries    int
	StartupRetryDelay time.Duration
	AllowDegraded     bool
	MismatchPolicy    string // notfound|forbidden
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RateLimitConfig rules use the "N/unit" syntax, comma separated (e.g. "200/day,50/hour").
type RateLimitConfig struct {
	Enabled  bool
	UseRedis bool
	Default  string
	Publish  string
	Fetch    string
	Delete   string
}

type RetentionConfig struct {
	MaxAge        time.Duration
	SweepInterval time.Duration
}

// ArchiveConfig points at the MinIO bucket receiving swept documents.
// Archiving is disabled when Endpoint is empty.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type KeycloakConfig struct {
	URL      string
	Realm    string
	ClientID string
}

type AdminConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type KeepAliveConfig struct {
	URL      string
	Interval time.Duration
}

const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	PolicyNotFound  = "notfound"
	PolicyForbidden = "forbidden"
)

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("PORT", "10000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("MONGODB_DB", "documents_db")
	viper.SetDefault("MONGODB_TIMEOUT", 5)
	viper.SetDefault("STORE_OP_TIMEOUT", 5)
	viper.SetDefault("STARTUP_RETRIES", 3)
	viper.SetDefault("STARTUP_RETRY_DELAY", 5)
	viper.SetDefault("ALLOW_DEGRADED_START", false)
	viper.SetDefault("DELETE_MISMATCH_POLICY", PolicyNotFound)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_USE_REDIS", false)
	viper.SetDefault("RATE_LIMIT_DEFAULT", "200/day,50/hour")
	viper.SetDefault("RATE_LIMIT_PUBLISH", "5/minute")
	viper.SetDefault("RATE_LIMIT_FETCH", "30/minute")
	viper.SetDefault("RATE_LIMIT_DELETE", "10/minute")
	viper.SetDefault("RETENTION_DAYS", 30)
	viper.SetDefault("SWEEP_INTERVAL", 60)
	viper.SetDefault("MINIO_BUCKET", "docshare-archive")
	viper.SetDefault("ADMIN_TOKEN_TTL", 60)
	viper.SetDefault("KEEPALIVE_INTERVAL", 2)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			ReadTimeout:  time.Duration(viper.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(viper.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		Store: StoreConfig{
			Backend:           strings.ToLower(strings.TrimSpace(viper.GetString("STORE_BACKEND"))),
			OperationTimeout:  time.Duration(viper.GetInt("STORE_OP_TIMEOUT")) * time.Second,
			StartupRetries:    viper.GetInt("STARTUP_RETRIES"),
			StartupRetryDelay: time.Duration(viper.GetInt("STARTUP_RETRY_DELAY")) * time.Second,
			AllowDegraded:     viper.GetBool("ALLOW_DEGRADED_START"),
			MismatchPolicy:    strings.ToLower(strings.TrimSpace(viper.GetString("DELETE_MISMATCH_POLICY"))),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DB"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("SQLITE_PATH"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis: viper.GetBool("RATE_LIMIT_USE_REDIS"),
			Default:  viper.GetString("RATE_LIMIT_DEFAULT"),
			Publish:  viper.GetString("RATE_LIMIT_PUBLISH"),
			Fetch:    viper.GetString("RATE_LIMIT_FETCH"),
			Delete:   viper.GetString("RATE_LIMIT_DELETE"),
		},
		Retention: RetentionConfig{
			MaxAge:        time.Duration(viper.GetInt("RETENTION_DAYS")) * 24 * time.Hour,
			SweepInterval: time.Duration(viper.GetInt("SWEEP_INTERVAL")) * time.Minute,
		},
		Archive: ArchiveConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		Keycloak: KeycloakConfig{
			URL:      viper.GetString("KEYCLOAK_URL"),
			Realm:    viper.GetString("KEYCLOAK_REALM"),
			ClientID: viper.GetString("KEYCLOAK_CLIENT_ID"),
		},
		Admin: AdminConfig{
			JWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
			TokenTTL:  time.Duration(viper.GetInt("ADMIN_TOKEN_TTL")) * time.Minute,
		},
		KeepAlive: KeepAliveConfig{
			URL:      viper.GetString("KEEPALIVE_URL"),
			Interval: time.Duration(viper.GetInt("KEEPALIVE_INTERVAL")) * time.Minute,
		},
	}

	if cfg.Store.Backend == "" {
		switch {
		case cfg.MongoDB.URI != "":
			cfg.Store.Backend = BackendMongo
		case cfg.SQLite.Path != "":
			cfg.Store.Backend = BackendSQLite
		default:
			cfg.Store.Backend = BackendMemory
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("STORE_BACKEND=mongo requires MONGODB_URI")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("STORE_BACKEND=sqlite requires SQLITE_PATH")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	switch c.Store.MismatchPolicy {
	case PolicyNotFound, PolicyForbidden:
	default:
		return fmt.Errorf("unknown DELETE_MISMATCH_POLICY %q (want %s or %s)", c.Store.MismatchPolicy, PolicyNotFound, PolicyForbidden)
	}
	if c.Store.OperationTimeout <= 0 {
		return fmt.Errorf("STORE_OP_TIMEOUT must be positive")
	}
	if c.Retention.MaxAge <= 0 || c.Retention.SweepInterval <= 0 {
		return fmt.Errorf("RETENTION_DAYS and SWEEP_INTERVAL must be positive")
	}
	return nil
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return c.Redis.Host + ":" + c.Redis.Port
}
