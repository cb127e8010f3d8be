package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

// baseValidConfig returns a fully-valid configuration object that callers
// can tweak inside table tests.
func baseValidConfig() Config {
	return Config{
		AppPort:          8080,
		BcryptCost:       12,
		SignInRatePerMin: 5,
		LogLevel:         "info",
		LogFormat:        "json",
		MongoURI:         "mongodb://localhost:27017",
		MongoDBName:      "test",
		JWTSecret:        "this-is-a-super-secret-jwt-key-with-32-plus-chars",
		JWTAlgorithm:     "HS256",
		TokenTTLDays:     7,
	}
}

// clearConfigEnvVars removes every environment variable that the Config loader
// consumes so each test starts with a clean slate.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()

	for _, k := range []string{
		"APP_PORT",
		"BCRYPT_COST",
		"SIGNIN_RATE_PER_MIN",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"MONGO_URI",
		"MONGO_DB_NAME",
		"JWT_SECRET",
		"JWT_ALGORITHM",
		"TOKEN_TTL_DAYS",
		"ROUTE_METRICS_ENABLED",
		"REQUEST_LOGGING_ENABLED",
	} {
		if err := os.Unsetenv(k); err != nil {
			t.Logf("warning: failed to unset %s: %v", k, err)
		}
	}
}

func TestConfigLoadDefaults(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 5, cfg.SignInRatePerMin)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
	assert.Equal(t, "bookburst", cfg.MongoDBName)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 7, cfg.TokenTTLDays)
	assert.True(t, cfg.RouteMetricsEnabled)
	assert.False(t, cfg.RequestLoggingEnabled)
}

func TestConfigLoadFromEnv(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()

	t.Setenv("APP_PORT", "9090")
	t.Setenv("MONGO_DB_NAME", "bookburst_test")
	t.Setenv("TOKEN_TTL_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.AppPort)
	assert.Equal(t, "bookburst_test", cfg.MongoDBName)
	assert.Equal(t, 30, cfg.TokenTTLDays)

	ResetCache()
}

func TestConfigLoadIsCached(t *testing.T) {
	clearConfigEnvVars(t)
	ResetCache()

	first, err := Load()
	require.NoError(t, err)

	// Changing the environment after the first Load must not change the result.
	t.Setenv("APP_PORT", "1234")

	second, err := Load()
	require.NoError(t, err)
	assert.Equal(t, first.AppPort, second.AppPort)

	ResetCache()
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.AppPort = 0 },
			wantErr: "APP_PORT",
		},
		{
			name:    "bcrypt cost too low",
			mutate:  func(c *Config) { c.BcryptCost = 4 },
			wantErr: "BCRYPT_COST",
		},
		{
			name:    "bcrypt cost too high",
			mutate:  func(c *Config) { c.BcryptCost = 20 },
			wantErr: "BCRYPT_COST",
		},
		{
			name:    "missing mongo uri",
			mutate:  func(c *Config) { c.MongoURI = "" },
			wantErr: "MONGO_URI",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.JWTSecret = "too-short" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "unsupported jwt algorithm",
			mutate:  func(c *Config) { c.JWTAlgorithm = "RS256" },
			wantErr: "JWT_ALGORITHM",
		},
		{
			name:    "non-positive token ttl",
			mutate:  func(c *Config) { c.TokenTTLDays = 0 },
			wantErr: "TOKEN_TTL_DAYS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseValidConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
