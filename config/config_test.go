package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default configuration",
			envVars: map[string]string{
				"ENVIRONMENT":  "development",
				"TOKEN_SECRET": testSecret,
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.False(t, cfg.Server.TLS.Enabled)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "dev", cfg.Database.User)
				assert.Equal(t, 240*time.Hour, cfg.Auth.TokenExpiration)
				assert.Equal(t, "Bearer ", cfg.Auth.TokenPrefix)
				assert.Equal(t, "Authorization", cfg.Auth.HeaderName)
				assert.Equal(t, "UserID", cfg.Auth.UserIDHeaderName)
				assert.Equal(t, "uploads", cfg.Storage.UploadDir)
				assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadBytes)
				assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
			},
		},
		{
			name: "missing token secret",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
			},
			wantErr: true,
		},
		{
			name: "short token secret",
			envVars: map[string]string{
				"TOKEN_SECRET": "too-short",
			},
			wantErr: true,
		},
		{
			name: "custom token settings",
			envVars: map[string]string{
				"TOKEN_SECRET":     testSecret,
				"TOKEN_EXPIRATION": "2h",
				"BCRYPT_COST":      "12",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2*time.Hour, cfg.Auth.TokenExpiration)
				assert.Equal(t, 12, cfg.Auth.BcryptCost)
				assert.Equal(t, testSecret, cfg.Auth.TokenSecret)
			},
		},
		{
			name: "custom timeouts and pool settings",
			envVars: map[string]string{
				"TOKEN_SECRET":         testSecret,
				"SERVER_READ_TIMEOUT":  "60s",
				"SERVER_WRITE_TIMEOUT": "90s",
				"DB_MAX_OPEN_CONNS":    "50",
				"DB_MAX_IDLE_CONNS":    "10",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 50, cfg.Database.MaxOpenConns)
				assert.Equal(t, 10, cfg.Database.MaxIdleConns)
			},
		},
		{
			name: "DATABASE_URL takes precedence",
			envVars: map[string]string{
				"TOKEN_SECRET": testSecret,
				"DATABASE_URL": "postgres://app:pw@db.example.com:6543/cities?sslmode=require",
				"DB_HOST":      "ignored",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgres://app:pw@db.example.com:6543/cities?sslmode=require", cfg.Database.DSN())
				assert.Equal(t, "host=db.example.com port=6543 database=cities", cfg.Database.LogString())
				assert.Empty(t, cfg.Database.Host)
			},
		},
		{
			name: "PORT env var takes precedence over SERVER_PORT",
			envVars: map[string]string{
				"TOKEN_SECRET": testSecret,
				"PORT":         "9443",
				"SERVER_PORT":  "9000",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9443, cfg.Server.Port)
			},
		},
		{
			name: "observability and catalog configuration",
			envVars: map[string]string{
				"TOKEN_SECRET":    testSecret,
				"LOG_LEVEL":       "debug",
				"LOG_FORMAT":      "console",
				"METRICS_ENABLED": "false",
				"METRICS_PORT":    "9191",
				"CITIES_CSV":      "assets/cities.csv",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Observability.LogLevel)
				assert.Equal(t, "console", cfg.Observability.LogFormat)
				assert.False(t, cfg.Observability.MetricsEnabled)
				assert.Equal(t, "0.0.0.0:9191", cfg.MetricsAddress())
				assert.Equal(t, "assets/cities.csv", cfg.Catalog.CitiesCSV)
			},
		},
		{
			name: "CORS origins list",
			envVars: map[string]string{
				"TOKEN_SECRET":         testSecret,
				"CORS_ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com,",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
			},
		},
		{
			name: "unknown config file",
			envVars: map[string]string{
				"TOKEN_SECRET": testSecret,
				"CONFIG_FILE":  "/does/not/exist.yaml",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			// Create config
			cfg, err := New(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestNew_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "token_secret: " + testSecret + "\nSERVER_PORT: 7000\nTOKEN_EXPIRATION: 1h\nMETRICS_ENABLED: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	os.Clearenv()
	os.Setenv("CONFIG_FILE", path)
	os.Setenv("TOKEN_EXPIRATION", "3h")

	cfg, err := New(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testSecret, cfg.Auth.TokenSecret)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.False(t, cfg.Observability.MetricsEnabled)
	// Environment wins over the file
	assert.Equal(t, 3*time.Hour, cfg.Auth.TokenExpiration)
}

func TestNew_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	os.Clearenv()
	os.Setenv("CONFIG_FILE", path)

	_, err := New(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Host: "localhost", User: "dev", Database: "core_platform"},
			Auth: AuthConfig{
				TokenSecret:     testSecret,
				TokenExpiration: time.Hour,
				TokenPrefix:     "Bearer ",
			},
			Storage:       StorageConfig{MaxUploadBytes: 1024},
			Observability: ObservabilityConfig{LogLevel: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no database", mutate: func(c *Config) { c.Database = DatabaseConfig{} }, wantErr: "database configuration required"},
		{name: "no database user", mutate: func(c *Config) { c.Database.User = "" }, wantErr: "database user is required"},
		{name: "no database name", mutate: func(c *Config) { c.Database.Database = "" }, wantErr: "database name is required"},
		{name: "connection string only", mutate: func(c *Config) { c.Database = DatabaseConfig{ConnectionString: "postgres://x"} }},
		{name: "no secret", mutate: func(c *Config) { c.Auth.TokenSecret = "" }, wantErr: "token secret is required"},
		{name: "short secret", mutate: func(c *Config) { c.Auth.TokenSecret = "abc" }, wantErr: "at least 32 bytes"},
		{name: "zero expiration", mutate: func(c *Config) { c.Auth.TokenExpiration = 0 }, wantErr: "token expiration must be positive"},
		{name: "empty prefix", mutate: func(c *Config) { c.Auth.TokenPrefix = "" }, wantErr: "token prefix is required"},
		{name: "zero upload limit", mutate: func(c *Config) { c.Storage.MaxUploadBytes = 0 }, wantErr: "upload size limit"},
		{name: "no log level", mutate: func(c *Config) { c.Observability.LogLevel = "" }, wantErr: "log level is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Environment(t *testing.T) {
	tests := []struct {
		env        string
		production bool
		dev        bool
	}{
		{"production", true, false},
		{"prod", true, false},
		{"development", false, true},
		{"dev", false, true},
		{"staging", false, false},
	}
	for _, tt := range tests {
		cfg := &Config{Environment: tt.env}
		assert.Equal(t, tt.production, cfg.IsProduction(), tt.env)
		assert.Equal(t, tt.dev, cfg.IsDevelopment(), tt.env)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "dev",
		Password: "pw",
		Database: "core_platform",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=dev password=pw dbname=core_platform sslmode=disable", cfg.DSN())
	assert.NotContains(t, cfg.LogString(), "pw")
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}

func TestSource_Fallbacks(t *testing.T) {
	os.Clearenv()
	src := &source{file: map[string]string{"FROM_FILE": "5"}}

	assert.Equal(t, 5, src.integer("FROM_FILE", 1))
	assert.Equal(t, 1, src.integer("MISSING", 1))

	os.Setenv("BAD_INT", "abc")
	assert.Equal(t, 7, src.integer("BAD_INT", 7))

	os.Setenv("BAD_BOOL", "maybe")
	assert.True(t, src.boolean("BAD_BOOL", true))

	os.Setenv("BAD_DURATION", "soon")
	assert.Equal(t, time.Second, src.duration("BAD_DURATION", time.Second))
}
