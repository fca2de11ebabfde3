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
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "root:@tcp(localhost:3306)/taskmanagementsystem?parseTime=true", cfg.DSN())
	assert.False(t, cfg.IsProduction())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=from-file\nDB_DRIVER=sqlite\nSQLITE_PATH=/tmp/tf.db\nALLOWED_ORIGINS=http://a.test,http://b.test\nREQUEST_TIMEOUT=2s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv does not override variables that are already set; make sure
	// these are unset for the duration of the test.
	for _, k := range []string{"JWT_SECRET", "DB_DRIVER", "SQLITE_PATH", "ALLOWED_ORIGINS", "REQUEST_TIMEOUT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Contains(t, cfg.DSN(), "/tmp/tf.db?")
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: DriverMySQL, JWTSecret: "s", RequestTimeout: time.Second, TokenTTL: time.Hour}
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	badDriver := base
	badDriver.DBDriver = "postgres"
	assert.Error(t, badDriver.Validate())

	noTimeout := base
	noTimeout.RequestTimeout = 0
	assert.Error(t, noTimeout.Validate())
}
