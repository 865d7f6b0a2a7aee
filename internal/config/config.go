package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
}

type ServerConfig struct {
	HTTPPort        string        `yaml:"http_port" validate:"required,numeric"`
	GRPCPort        string        `yaml:"grpc_port" validate:"required,numeric"`
	GRPCEnabled     bool          `yaml:"grpc_enabled"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" validate:"gte=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" validate:"gte=0"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error"`
	FilePath string `yaml:"file_path"`
	FileName string `yaml:"file_name"`
}

// DatabaseConfig selects the task store. Driver "memory" keeps tasks in process
// and ignores the connection settings.
type DatabaseConfig struct {
	Driver         string        `yaml:"driver" validate:"oneof=postgres memory"`
	URL            string        `yaml:"url"`
	Host           string        `yaml:"host" validate:"required_without=URL"`
	Port           int           `yaml:"port" validate:"gt=0,lt=65536"`
	Name           string        `yaml:"name" validate:"required_without=URL"`
	User           string        `yaml:"user" validate:"required_without=URL"`
	Password       string        `yaml:"password"`
	SSLMode        string        `yaml:"ssl_mode" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns       int32         `yaml:"max_conns" validate:"gte=1"`
	ConnectRetries int           `yaml:"connect_retries" validate:"gte=1"`
	RetryDelay     time.Duration `yaml:"retry_delay" validate:"gte=0"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        "8080",
			GRPCPort:        "9090",
			GRPCEnabled:     false,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    0,
			RateLimitBurst:  20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			FilePath: "",
			FileName: "todo-service.log",
		},
		Database: DatabaseConfig{
			Driver:         "postgres",
			Host:           "localhost",
			Port:           5432,
			Name:           "todo_db",
			User:           "todo_user",
			SSLMode:        "disable",
			MaxConns:       10,
			ConnectRetries: 10,
			RetryDelay:     5 * time.Second,
		},
	}
}

// LoadEnvFile loads variables from .env style files into the process
// environment. Variables that are already set win.
func LoadEnvFile(paths ...string) error {
	return godotenv.Load(paths...)
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv() {
	c.Server.HTTPPort = getEnv("HTTP_PORT", c.Server.HTTPPort)
	c.Server.GRPCPort = getEnv("GRPC_PORT", c.Server.GRPCPort)
	c.Server.GRPCEnabled = getEnvBool("GRPC_ENABLED", c.Server.GRPCEnabled)
	c.Server.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("HTTP_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.RateLimitRPS = getEnvFloat("HTTP_RATE_LIMIT_RPS", c.Server.RateLimitRPS)
	c.Server.RateLimitBurst = getEnvInt("HTTP_RATE_LIMIT_BURST", c.Server.RateLimitBurst)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.FilePath = getEnv("LOG_FILE_PATH", c.Logging.FilePath)
	c.Logging.FileName = getEnv("LOG_FILE_NAME", c.Logging.FileName)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxConns = int32(getEnvInt("DB_MAX_CONNS", int(c.Database.MaxConns)))
	c.Database.ConnectRetries = getEnvInt("DB_CONNECT_RETRIES", c.Database.ConnectRetries)
	c.Database.RetryDelay = getEnvDuration("DB_RETRY_DELAY", c.Database.RetryDelay)
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a keyword/value connection string.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("30s") or plain seconds ("30").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
