package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	defaultUIPort     = 8080
	defaultAPIPort    = 8000
	defaultAPIBaseURL = "https://domain-danajo.liara.run/api/Domain/"
)

type Config struct {
	Port    int `json:"port"`
	APIPort int `json:"api_port"`

	API struct {
		BaseURL string        `json:"base_url"`
		Proxy   string        `json:"proxy,omitempty"`
		Timeout time.Duration `json:"timeout"`
	} `json:"api"`

	UI struct {
		RenderWait time.Duration `json:"render_wait"`
		SessionTTL time.Duration `json:"session_ttl"`
		PrettyHTML bool          `json:"pretty_html"`
	} `json:"ui"`

	Database DatabaseConfig `json:"database"`

	RedisURL   string `json:"redis_url,omitempty"`
	LogLevel   string `json:"log_level"`
	InstanceID string `json:"instance_id"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Path     string `json:"path"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Password string `json:"-"`
}

var configValue atomic.Value

func init() {
	configValue.Store(Config{})
}

// LoadEnvFile reads a .env file into the process environment. A missing file
// is not an error.
func LoadEnvFile(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	var cfg Config

	cfg.Port = GetEnvInt("PORT", defaultUIPort)
	cfg.APIPort = GetEnvInt("API_PORT", defaultAPIPort)

	cfg.API.BaseURL = GetEnv("DOMAIN_API_URL", defaultAPIBaseURL)
	cfg.API.Proxy = GetEnv("DOMAIN_API_PROXY", "")
	cfg.API.Timeout = GetEnvDuration("API_TIMEOUT", 0)

	cfg.UI.RenderWait = GetEnvDuration("RENDER_WAIT", 2*time.Second)
	cfg.UI.SessionTTL = GetEnvDuration("SESSION_TTL", 12*time.Hour)
	cfg.UI.PrettyHTML = GetEnvBool("PRETTY_HTML", false)

	cfg.Database = DatabaseConfig{
		Driver:   strings.ToLower(GetEnv("DB_DRIVER", "sqlite")),
		Path:     GetEnv("DB_PATH", "data/domains.db"),
		Host:     GetEnv("DB_HOST", "localhost"),
		Port:     GetEnv("DB_PORT", "5432"),
		Name:     GetEnv("DB_NAME", "domains"),
		User:     GetEnv("DB_USERNAME", "admin"),
		Password: GetEnv("DB_PASSWORD", "admin"),
	}

	cfg.RedisURL = GetEnv("REDIS_URL", "")
	cfg.LogLevel = GetEnv("LOG_LEVEL", "info")
	cfg.InstanceID = GetEnv("INSTANCE_ID", uuid.NewString())

	return cfg
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: invalid port %d", c.Port))
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("config: invalid api port %d", c.APIPort))
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("config: domain api url is empty"))
	}
	if c.API.Timeout < 0 || c.UI.RenderWait < 0 {
		errs = append(errs, errors.New("config: durations must not be negative"))
	}
	if c.UI.SessionTTL <= 0 {
		errs = append(errs, errors.New("config: session ttl must be positive"))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("config: unsupported database driver %q", c.Database.Driver))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	return errors.Join(errs...)
}

// PostgresDSN renders the connection string for the postgres driver.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
	)
}

// ApplyLogLevel sets the global logger level, keeping the current one when
// the value cannot be parsed.
func (c Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warn("invalid log level", "value", c.LogLevel)
		return
	}
	log.SetLevel(level)
}

func SetConfig(cfg Config) {
	configValue.Store(cfg)
	log.Debug("Configuration applied", "port", cfg.Port, "api_url", cfg.API.BaseURL)
}

func GetConfig() Config {
	return configValue.Load().(Config)
}
