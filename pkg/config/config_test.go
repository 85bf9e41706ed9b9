package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_CONN_STR", "postgres://localhost/gamehub")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gamehub", cfg.MongoDatabase)
	assert.Equal(t, AuthProviderJWT, cfg.AuthProvider)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, int64(100), cfg.MaxPendingRequests)
	assert.Equal(t, int64(500), cfg.MaxFriends)
	assert.Equal(t, int64(1000000), cfg.MaxOfferPrice)
	assert.Equal(t, int64(1000), cfg.StartingBalance)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadRequiresDatabases(t *testing.T) {
	t.Setenv("POSTGRES_CONN_STR", "")
	t.Setenv("MONGO_URI", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_FRIENDS", "10")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(10), cfg.MaxFriends)
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Env:                "development",
			AuthProvider:       AuthProviderJWT,
			JWTSecret:          devJWTSecret,
			MaxPendingRequests: 1,
			MaxFriends:         1,
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Env = "production"
	assert.Error(t, cfg.Validate())
	cfg.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.AuthProvider = AuthProviderFirebase
	assert.Error(t, cfg.Validate())
	cfg.FirebaseCredentialsPath = "/etc/firebase.json"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.AuthProvider = "ldap"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.MaxFriends = 0
	assert.Error(t, cfg.Validate())
}
