package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_KEY", "access-key-32-bytes-for-testing!")
	t.Setenv("REFRESH_TOKEN_KEY", "refresh-key-32-bytes-for-testing")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.TrustedOrigins)

	assert.Equal(t, "savora", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenDuration)

	assert.Equal(t, "savora-recipes", cfg.Media.Bucket)
}

func TestLoad_RejectsBadKeyLengths(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_KEY", "short")
	t.Setenv("REFRESH_TOKEN_KEY", "refresh-key-32-bytes-for-testing")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ACCESS_TOKEN_KEY", "access-key-32-bytes-for-testing!")
	t.Setenv("REFRESH_TOKEN_KEY", "short")

	_, err = Load()
	assert.Error(t, err)
}

func TestConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     "5433",
		User:     "savora",
		Password: "secret",
		DBName:   "savora",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=savora password=secret dbname=savora sslmode=require",
		cfg.ConnectionString(),
	)
}

func TestRedisAddress(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: "6380"}
	assert.Equal(t, "cache.internal:6380", cfg.Address())
}
