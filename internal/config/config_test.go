package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 60, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, 10, cfg.Tasks.DefaultLimit)
	assert.Equal(t, 100, cfg.Tasks.MaxLimit)
	assert.True(t, cfg.Auth.AllowAdminSignup)
	assert.Error(t, cfg.Validate(), "missing secret must not validate")
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "plain-secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/tasks")
	t.Setenv("TASKTRACKER_TASKS_MAXLIMIT", "25")
	t.Setenv("TASKTRACKER_AUTH_ALLOWADMINSIGNUP", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "plain-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres://u:p@localhost:5432/tasks", cfg.Database.URL)
	assert.Equal(t, 25, cfg.Tasks.MaxLimit)
	assert.False(t, cfg.Auth.AllowAdminSignup)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var c Config
		c.Auth.JWTSecret = "s"
		c.Auth.BcryptCost = 10
		c.Auth.TokenTTLMinutes = 60
		c.Database.Driver = DriverSQLite
		c.Database.Path = "data/test.db"
		return c
	}
	require.NoError(t, base().Validate())

	c := base()
	c.Database.Driver = "mysql"
	assert.Error(t, c.Validate())

	c = base()
	c.Database.Driver = DriverPostgres
	assert.Error(t, c.Validate())

	c = base()
	c.Auth.BcryptCost = 99
	assert.Error(t, c.Validate())

	c = base()
	c.Auth.TokenTTLMinutes = 0
	assert.Error(t, c.Validate())

	// limiter settings only matter once redis is configured
	c = base()
	c.RateLimit.WindowSeconds = 0
	require.NoError(t, c.Validate())
	c.Redis.Addr = "localhost:6379"
	assert.Error(t, c.Validate())
	c.RateLimit.WindowSeconds = 60
	assert.Error(t, c.Validate(), "auth requests still zero")
	c.RateLimit.AuthRequests = 10
	require.NoError(t, c.Validate())
}

func TestLoad_PortFallback(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "8081")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8081", cfg.Server.Addr)
}
