package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	FlashCookie = "cookie"
	FlashRedis  = "redis"

	// DevFlashSecret is the default signing key; it is accepted only in local.
	DevFlashSecret = "dev-flash-secret"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

type Config struct {
	ServerPort string      `yaml:"server_port" env:"SERVER_PORT" env-default:"8080"`
	AppEnv     string      `yaml:"app_env" env:"APP_ENV" env-default:"local"`
	LogLevel   string      `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Timezone   string      `yaml:"timezone" env:"APP_TIMEZONE" env-default:"UTC"`
	DB         DBConfig    `yaml:"db"`
	Flash      FlashConfig `yaml:"flash"`
	Redis      RedisConfig `yaml:"redis"`
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location is the zone used to read form dates and to display them.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SecureCookies reports whether cookies must be limited to HTTPS.
func (c Config) SecureCookies() bool {
	return c.AppEnv != "local"
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be postgres or sqlite", c.DB.Driver)
	}
	switch c.Flash.Store {
	case FlashCookie, FlashRedis:
	default:
		return fmt.Errorf("invalid FLASH_STORE %q: must be cookie or redis", c.Flash.Store)
	}
	if c.Flash.Secret == "" {
		return fmt.Errorf("FLASH_SECRET must not be empty")
	}
	if c.Flash.Secret == DevFlashSecret && c.AppEnv != "local" {
		return fmt.Errorf("FLASH_SECRET must be set in %s environment", c.AppEnv)
	}
	if c.Flash.TTL <= 0 {
		return fmt.Errorf("invalid FLASH_TTL %s: must be positive", c.Flash.TTL)
	}
	return nil
}

type DBConfig struct {
	Driver     string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host       string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port       string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User       string `yaml:"user" env:"DB_USER" env-default:"todo"`
	Password   string `yaml:"password" env:"DB_PASSWORD" env-default:"todo"`
	Name       string `yaml:"name" env:"DB_NAME" env-default:"todo"`
	SSLMode    string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	SQLitePath string `yaml:"sqlite_path" env:"DB_SQLITE_PATH" env-default:"todo.db"`
	Migrate    bool   `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type FlashConfig struct {
	Store  string        `yaml:"store" env:"FLASH_STORE" env-default:"cookie"`
	Secret string        `yaml:"secret" env:"FLASH_SECRET" env-default:"dev-flash-secret"`
	TTL    time.Duration `yaml:"ttl" env:"FLASH_TTL" env-default:"5m"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Load reads the configuration from the environment. When CONFIG_FILE names
// a file, it is read first and environment variables override it.
func Load() (Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}
