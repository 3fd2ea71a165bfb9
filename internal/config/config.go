package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Driver   string
		URL      string
		Path     string
		MaxConns int32
	}
	Auth struct {
		JWTSecret        string
		TokenTTLMinutes  int
		BcryptCost       int
		AllowAdminSignup bool
	}
	Tasks struct {
		DefaultLimit int
		MaxLimit     int
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	RateLimit struct {
		AuthRequests  int
		WindowSeconds int
	}
	Log struct {
		Level  string
		Format string
	}
}

const defaultPort = "3000"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Load reads configuration from environment variables, an optional .env file
// and an optional config file in the working directory.
func Load() (Config, error) {
	_ = godotenv.Load() // optional file; real env vars win

	v := viper.New()
	v.SetEnvPrefix("TASKTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "data/tasktracker.db")
	v.SetDefault("database.maxconns", 10)
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.bcryptcost", bcrypt.DefaultCost)
	v.SetDefault("auth.allowadminsignup", true)
	v.SetDefault("tasks.defaultlimit", 10)
	v.SetDefault("tasks.maxlimit", 100)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.authrequests", 10)
	v.SetDefault("ratelimit.windowseconds", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// unprefixed names used by existing deployments
	_ = v.BindEnv("database.url", "TASKTRACKER_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.jwtsecret", "TASKTRACKER_AUTH_JWTSECRET", "JWT_SECRET")
	_ = v.BindEnv("redis.addr", "TASKTRACKER_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("server.addr", "TASKTRACKER_SERVER_ADDR")
	_ = v.BindEnv("server.port", "PORT")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Server.Addr == "" {
		port := v.GetString("server.port")
		if port == "" {
			port = defaultPort
		}
		cfg.Server.Addr = "0.0.0.0:" + port
	}

	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth jwt secret is required (JWT_SECRET)")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("database url is required for the postgres driver (DATABASE_URL)")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return errors.New("token ttl must be positive")
	}
	if c.Redis.Addr != "" {
		if c.RateLimit.AuthRequests <= 0 {
			return errors.New("ratelimit auth requests must be positive when redis is configured")
		}
		if c.RateLimit.WindowSeconds <= 0 {
			return errors.New("ratelimit window must be positive when redis is configured")
		}
	}
	return nil
}
