package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("BILL_OWNERSHIP_CHECK", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.HTTPPort)
	assert.Equal(t, 300, c.CacheTTL)
	assert.Empty(t, c.KafkaBrokers)
	assert.False(t, c.BillOwnershipCheck)
	assert.Equal(t, 168*time.Hour, c.SessionTTL())
	assert.Equal(t, time.Local, c.Location())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("BILL_OWNERSHIP_CHECK", "true")
	t.Setenv("CACHE_TTL_SEC", "not-a-number")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.HTTPPort)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.KafkaBrokers)
	assert.True(t, c.BillOwnershipCheck)
	assert.Equal(t, 300, c.CacheTTL)
	assert.Equal(t, "Europe/Berlin", c.Location().String())
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_port: "7000"
cache_ttl_sec: 60
cors_origins: ["http://localhost:3000"]
jwt_secret: from-file
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_PORT", "")
	t.Setenv("CACHE_TTL_SEC", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("JWT_SECRET", "from-env")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", c.HTTPPort)
	assert.Equal(t, time.Minute, c.CacheTTLDuration())
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORSOrigins)
	assert.Equal(t, "from-env", c.JWTSecret)
}

func TestLoadMissingFileStillUsable(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	c, err := Load()
	assert.Error(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 20, c.DBPoolSize)
}

func TestLocationUnknownZoneFallsBack(t *testing.T) {
	c := &Config{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.Local, c.Location())
}
