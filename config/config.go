package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// minTokenSecretLength is the minimum accepted HMAC key size in bytes
const minTokenSecretLength = 32

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Storage       StorageConfig
	Catalog       CatalogConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
	TLS             struct {
		Enabled  bool
		CertFile string
		KeyFile  string
	}
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// AuthConfig holds token issuance and verification settings.
// TokenSecret has no default: it must be provisioned through the environment or the config file.
type AuthConfig struct {
	TokenSecret      string
	TokenExpiration  time.Duration
	TokenPrefix      string
	HeaderName       string
	UserIDHeaderName string
	Issuer           string
	BcryptCost       int
}

// StorageConfig holds blob storage settings for uploaded files
type StorageConfig struct {
	UploadDir      string
	MaxUploadBytes int64
}

// CatalogConfig holds the city catalog settings
type CatalogConfig struct {
	CitiesCSV string        // Optional CSV seeded into an empty cities table on startup
	CacheTTL  time.Duration // TTL of the cached city list
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
	MetricsPort    int
}

// New creates a new Config instance by loading environment variables.
// Precedence: process environment, then CONFIG_FILE (YAML), then defaults.
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists; values already in the environment win
	_ = godotenv.Load(".env")

	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: src.str("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            src.str("SERVER_HOST", "0.0.0.0"),
			Port:            src.port(),
			ReadTimeout:     src.duration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    src.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: src.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  src.duration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			AllowedOrigins:  src.list("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*", "https://*"}),
		},
		Database: loadDatabaseConfig(src),
		Auth: AuthConfig{
			TokenSecret:      src.str("TOKEN_SECRET", ""),
			TokenExpiration:  src.duration("TOKEN_EXPIRATION", 240*time.Hour),
			TokenPrefix:      src.str("TOKEN_PREFIX", "Bearer "),
			HeaderName:       src.str("TOKEN_HEADER", "Authorization"),
			UserIDHeaderName: src.str("USER_ID_HEADER", "UserID"),
			Issuer:           src.str("TOKEN_ISSUER", "core-platform"),
			BcryptCost:       src.integer("BCRYPT_COST", 10),
		},
		Storage: StorageConfig{
			UploadDir:      src.str("UPLOAD_DIR", "uploads"),
			MaxUploadBytes: int64(src.integer("UPLOAD_MAX_BYTES", 10<<20)),
		},
		Catalog: CatalogConfig{
			CitiesCSV: src.str("CITIES_CSV", ""),
			CacheTTL:  src.duration("CITY_CACHE_TTL", 5*time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:       src.str("LOG_LEVEL", "info"),
			LogFormat:      src.str("LOG_FORMAT", "json"),
			MetricsEnabled: src.boolean("METRICS_ENABLED", true),
			MetricsPort:    src.integer("METRICS_PORT", 9090),
		},
	}
	cfg.Server.TLS.Enabled = src.boolean("TLS_ENABLED", false)
	cfg.Server.TLS.CertFile = src.str("TLS_CERT_FILE", "certs/cert.pem")
	cfg.Server.TLS.KeyFile = src.str("TLS_KEY_FILE", "certs/key.pem")

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Database validation (DATABASE_URL or DB_* vars)
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// Token signing key
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("token secret is required: set TOKEN_SECRET")
	}
	if len(c.Auth.TokenSecret) < minTokenSecretLength {
		return fmt.Errorf("token secret must be at least %d bytes", minTokenSecretLength)
	}
	if c.Auth.TokenExpiration <= 0 {
		return fmt.Errorf("token expiration must be positive")
	}
	if c.Auth.TokenPrefix == "" {
		return fmt.Errorf("token prefix is required")
	}

	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("upload size limit must be positive")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MetricsAddress returns the address of the Prometheus metrics listener
func (c *Config) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Observability.MetricsPort)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig(src *source) DatabaseConfig {
	pool := DatabaseConfig{
		MaxOpenConns:    src.integer("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    src.integer("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: src.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
	if dbURL := src.str("DATABASE_URL", ""); dbURL != "" {
		pool.ConnectionString = dbURL
		return pool
	}
	pool.Host = src.str("DB_HOST", "localhost")
	pool.Port = src.integer("DB_PORT", 5432)
	pool.User = src.str("DB_USER", "dev")
	pool.Password = src.str("DB_PASSWORD", "")
	pool.Database = src.str("DB_NAME", "core_platform")
	pool.SSLMode = src.str("DB_SSLMODE", "disable")
	return pool
}

// source resolves configuration keys from the environment, falling back to
// values read from the optional YAML config file.
type source struct {
	file map[string]string
}

// newSource reads the flat KEY: value YAML document at path. An empty path yields an env-only source.
func newSource(path string) (*source, error) {
	src := &source{file: map[string]string{}}
	if path == "" {
		return src, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	for k, v := range raw {
		if v == nil {
			continue
		}
		src.file[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return src, nil
}

func (s *source) lookup(key string) (string, bool) {
	if value := os.Getenv(key); value != "" {
		return value, true
	}
	if value, ok := s.file[key]; ok && value != "" {
		return value, true
	}
	return "", false
}

// port returns the server port from PORT or SERVER_PORT (default: 8080)
func (s *source) port() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value, ok := s.lookup(key); ok {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 8080
}

func (s *source) str(key, defaultValue string) string {
	if value, ok := s.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (s *source) list(key string, defaultValue []string) []string {
	value, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func (s *source) integer(key string, defaultValue int) int {
	valueStr, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *source) boolean(key string, defaultValue bool) bool {
	valueStr, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *source) duration(key string, defaultValue time.Duration) time.Duration {
	valueStr, ok := s.lookup(key)
	if !ok {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
