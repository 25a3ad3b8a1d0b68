package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Name            string        `yaml:"name"`
	Port            string        `yaml:"port"`
	Env             string        `yaml:"env"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

type MongoConfig struct {
	URI      string        `yaml:"uri"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	SessionTTL         time.Duration `yaml:"session_ttl"`
	MaxFailedAttempts  int           `yaml:"max_failed_attempts"`
	FailedAttemptsTTL  time.Duration `yaml:"failed_attempts_ttl"`
	StaffSessionTTL    time.Duration `yaml:"staff_session_ttl"`
	PasswordResetTTL   time.Duration `yaml:"password_reset_ttl"`
	MinPasswordLength  int           `yaml:"min_password_length"`
	AttendanceGraceMin int           `yaml:"attendance_grace_minutes"`
}

type AssistantConfig struct {
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	APIVersion    string        `yaml:"api_version"`
	ChatModel     string        `yaml:"chat_model"`
	ThinkingModel string        `yaml:"thinking_model"`
	ImageModel    string        `yaml:"image_model"`
	Timeout       time.Duration `yaml:"timeout"`
}

// StaffConfig seeds the first admin when the employees table is empty.
type StaffConfig struct {
	AdminName  string `yaml:"admin_name"`
	AdminPIN   string `yaml:"admin_pin"`
	AdminStore string `yaml:"admin_store"`
}

type RetentionConfig struct {
	Schedule string        `yaml:"schedule"`
	MaxIdle  time.Duration `yaml:"max_idle"`
}

type Config struct {
	App       AppConfig       `yaml:"app"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Auth      AuthConfig      `yaml:"auth"`
	Assistant AssistantConfig `yaml:"assistant"`
	Staff     StaffConfig     `yaml:"staff"`
	Retention RetentionConfig `yaml:"retention"`
}

// NewConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_PATH), an optional .env file and the process environment, in that
// order of increasing precedence.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:            "technova",
			Port:            "8080",
			Env:             "development",
			LogLevel:        "debug",
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Port:            "5432",
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: 30 * time.Minute,
			MigrationsPath:  "migrations",
		},
		Mongo: MongoConfig{
			Database: "technova",
			Timeout:  10 * time.Second,
		},
		Auth: AuthConfig{
			SessionTTL:         30 * 24 * time.Hour,
			MaxFailedAttempts:  5,
			FailedAttemptsTTL:  15 * time.Minute,
			StaffSessionTTL:    12 * time.Hour,
			PasswordResetTTL:   time.Hour,
			MinPasswordLength:  6,
			AttendanceGraceMin: 5,
		},
		Assistant: AssistantConfig{
			BaseURL:       "https://generativelanguage.googleapis.com/",
			APIVersion:    "v1beta",
			ChatModel:     "gemini-2.5-flash",
			ThinkingModel: "gemini-2.5-pro",
			ImageModel:    "gemini-2.5-flash-image",
			Timeout:       60 * time.Second,
		},
		Staff: StaffConfig{
			AdminName:  "admin",
			AdminStore: "downtown",
		},
		Retention: RetentionConfig{
			Schedule: "@midnight",
			MaxIdle:  30 * 24 * time.Hour,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.App.Port, "APP_PORT")
	setString(&cfg.App.Env, "APP_ENV")
	setString(&cfg.App.LogLevel, "LOG_LEVEL")

	setString(&cfg.Postgres.Host, "DB_HOST")
	setString(&cfg.Postgres.Port, "DB_PORT")
	setString(&cfg.Postgres.User, "DB_USER")
	setString(&cfg.Postgres.Password, "DB_PASSWORD")
	setString(&cfg.Postgres.DBName, "DB_NAME")
	setString(&cfg.Postgres.SSLMode, "DB_SSLMODE")
	setString(&cfg.Postgres.MigrationsPath, "DB_MIGRATIONS_PATH")

	setString(&cfg.Mongo.URI, "MONGO_URI")
	setString(&cfg.Mongo.Database, "MONGO_DATABASE")

	setString(&cfg.Assistant.APIKey, "ASSISTANT_API_KEY")
	setString(&cfg.Assistant.BaseURL, "ASSISTANT_BASE_URL")
	setString(&cfg.Assistant.APIVersion, "ASSISTANT_API_VERSION")

	setString(&cfg.Staff.AdminName, "STAFF_ADMIN_NAME")
	setString(&cfg.Staff.AdminPIN, "STAFF_ADMIN_PIN")
	setString(&cfg.Staff.AdminStore, "STAFF_ADMIN_STORE")

	setString(&cfg.Retention.Schedule, "RETENTION_SCHEDULE")

	var errs []error
	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("DB_MAX_CONNS: %w", err))
		} else {
			cfg.Postgres.MaxConns = int32(n)
		}
	}
	errs = append(errs,
		setDuration(&cfg.App.ShutdownTimeout, "APP_SHUTDOWN_TIMEOUT"),
		setDuration(&cfg.Mongo.Timeout, "MONGO_TIMEOUT"),
		setDuration(&cfg.Auth.SessionTTL, "AUTH_SESSION_TTL"),
		setDuration(&cfg.Retention.MaxIdle, "RETENTION_MAX_IDLE"),
	)

	return errors.Join(errs...)
}

func (c *Config) validate() error {
	var missing []string
	if c.Postgres.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if c.Postgres.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.Postgres.DBName == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.Mongo.URI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// IsProduction reports whether logs should be emitted as JSON.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d

	return nil
}
