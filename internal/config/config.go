package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides. BLOG_DATABASE_MAX_OPEN_CONNS sets
// database.max_open_conns.
const EnvPrefix = "BLOG_"

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	JWT        JWTConfig        `koanf:"jwt"`
	Security   SecurityConfig   `koanf:"security"`
	Pagination PaginationConfig `koanf:"pagination"`
	Cache      CacheConfig      `koanf:"cache"`
	Storage    StorageConfig    `koanf:"storage"`
}

type ServerConfig struct {
	Port        int    `koanf:"port"`
	Mode        string `koanf:"mode"` // debug, release, test
	BasePath    string `koanf:"base_path"`
	Runtime     string `koanf:"runtime"` // http, lambda
	CORSOrigins string `koanf:"cors_origins"`
}

// Origins splits the comma separated origin list. "*" or an empty list allows
// every origin.
func (s ServerConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	Database        string        `koanf:"database"`
	SSLMode         string        `koanf:"sslmode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret        string        `koanf:"secret"`
	RefreshSecret string        `koanf:"refresh_secret"`
	AccessTTL     time.Duration `koanf:"access_ttl"`
	RefreshTTL    time.Duration `koanf:"refresh_ttl"`
	Issuer        string        `koanf:"issuer"`
}

type SecurityConfig struct {
	PasswordEncoder  string `koanf:"password_encoder"` // bcrypt, pbkdf2
	BcryptCost       int    `koanf:"bcrypt_cost"`
	PBKDF2Secret     string `koanf:"pbkdf2_secret"`
	PBKDF2Iterations int    `koanf:"pbkdf2_iterations"`
	PBKDF2KeyLength  int    `koanf:"pbkdf2_key_length"`
}

type PaginationConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
}

type CacheConfig struct {
	Backend          string        `koanf:"backend"` // none, sql, mongo, dynamodb
	TTL              time.Duration `koanf:"ttl"`
	MongoURI         string        `koanf:"mongo_uri"`
	MongoDatabase    string        `koanf:"mongo_database"`
	DynamoDBRegion   string        `koanf:"dynamodb_region"`
	DynamoDBTable    string        `koanf:"dynamodb_table"`
	DynamoDBEndpoint string        `koanf:"dynamodb_endpoint"`
}

type StorageConfig struct {
	Bucket    string        `koanf:"bucket"`
	Region    string        `koanf:"region"`
	AccessKey string        `koanf:"access_key"`
	SecretKey string        `koanf:"secret_key"`
	Endpoint  string        `koanf:"endpoint"`
	URLExpiry time.Duration `koanf:"url_expiry"`
}

// Enabled reports whether object storage is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			Mode:     "release",
			BasePath: "/api",
			Runtime:  "http",
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			Username:        "postgres",
			Database:        "blog",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
		JWT: JWTConfig{
			AccessTTL:  24 * time.Hour,
			RefreshTTL: 30 * 24 * time.Hour,
			Issuer:     "blogapi",
		},
		Security: SecurityConfig{
			PasswordEncoder:  "bcrypt",
			BcryptCost:       10,
			PBKDF2Iterations: 10000,
			PBKDF2KeyLength:  64,
		},
		Pagination: PaginationConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		Cache: CacheConfig{
			Backend:       "none",
			TTL:           5 * time.Minute,
			MongoDatabase: "blog_cache",
			DynamoDBTable: "blog_cache",
		},
		Storage: StorageConfig{
			URLExpiry: time.Hour,
		},
	}
}

// Load reads .env when present, then the YAML file at path (skipped when path
// is empty), then BLOG_ environment overrides, on top of Default.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[config] could not load .env: %v", err)
	}

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps BLOG_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if err := oneOf("server.mode", c.Server.Mode, "debug", "release", "test"); err != nil {
		return err
	}
	if err := oneOf("server.runtime", c.Server.Runtime, "http", "lambda"); err != nil {
		return err
	}
	if err := oneOf("security.password_encoder", c.Security.PasswordEncoder, "bcrypt", "pbkdf2"); err != nil {
		return err
	}
	if c.Security.PasswordEncoder == "pbkdf2" && (c.Security.PBKDF2Iterations <= 0 || c.Security.PBKDF2KeyLength <= 0) {
		return errors.New("security.pbkdf2_iterations and security.pbkdf2_key_length must be positive")
	}
	if err := oneOf("cache.backend", c.Cache.Backend, "none", "sql", "mongo", "dynamodb"); err != nil {
		return err
	}
	if c.Cache.Backend == "mongo" && c.Cache.MongoURI == "" {
		return errors.New("cache.mongo_uri is required for the mongo cache")
	}
	if c.Cache.Backend == "dynamodb" && (c.Cache.DynamoDBTable == "" || c.Cache.DynamoDBRegion == "") {
		return errors.New("cache.dynamodb_table and cache.dynamodb_region are required for the dynamodb cache")
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return errors.New("pagination.default_limit must be positive and not above pagination.max_limit")
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}
