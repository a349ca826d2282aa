package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ConfigSchema struct {
	Databases struct {
		// postgres | sqlite
		Driver     string     `yaml:"driver"`
		SQLitePath string     `yaml:"sqlite_path"`
		Master     DBConfig   `yaml:"master"`
		Replicas   []DBConfig `yaml:"replicas"`
	} `yaml:"databases"`
	Redis    RedisConfig `yaml:"redis"`
	RabbitMQ struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
		Queue    string `yaml:"queue"`
	} `yaml:"rabbitmq"`
	Backend struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"backend"`
	Auth struct {
		JWTSecret     string        `yaml:"jwt_secret"`
		TokenTTL      time.Duration `yaml:"token_ttl"`
		AdminEmail    string        `yaml:"admin_email"`
		AdminPassword string        `yaml:"admin_password"`
	} `yaml:"auth"`
	Cache struct {
		UserSummaryTTL time.Duration `yaml:"user_summary_ttl"`
	} `yaml:"cache"`
	Logs struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logs"`
}

var AppConfig *ConfigSchema

// LoadConfig reads the YAML file, applies .env and environment overrides
// and stores the result in AppConfig.
func LoadConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	conf, err := Parse(data)
	if err != nil {
		return err
	}
	AppConfig = conf
	return nil
}

func Parse(data []byte) (*ConfigSchema, error) {
	conf := &ConfigSchema{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// .env is optional, missing file is not an error
	_ = godotenv.Load()
	conf.applyEnv()
	conf.applyDefaults()

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *ConfigSchema) applyEnv() {
	setString(&c.Databases.Master.Host, "DB_HOST")
	setInt(&c.Databases.Master.Port, "DB_PORT")
	setString(&c.Databases.Master.User, "DB_USER")
	setString(&c.Databases.Master.Password, "DB_PASSWORD")
	setString(&c.Databases.Master.DBName, "DB_NAME")
	setString(&c.Redis.Host, "REDIS_HOST")
	setInt(&c.Redis.Port, "REDIS_PORT")
	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
	setString(&c.Logs.Level, "LOG_LEVEL")
}

func (c *ConfigSchema) applyDefaults() {
	if c.Databases.Driver == "" {
		c.Databases.Driver = "postgres"
	}
	if c.Databases.Master.Port == 0 {
		c.Databases.Master.Port = 5432
	}
	if c.Databases.SQLitePath == "" {
		c.Databases.SQLitePath = "empowerpwd.db"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "message_events"
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "message_push_queue"
	}
	if c.Backend.Port == 0 {
		c.Backend.Port = 8080
	}
	if c.Backend.ShutdownTimeout == 0 {
		c.Backend.ShutdownTimeout = 10 * time.Second
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Cache.UserSummaryTTL == 0 {
		c.Cache.UserSummaryTTL = 10 * time.Minute
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Logs.Format == "" {
		c.Logs.Format = "json"
	}
}

func (c *ConfigSchema) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	switch c.Databases.Driver {
	case "postgres":
		if c.Databases.Master.Host == "" {
			return errors.New("databases.master.host is required for postgres")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Databases.Driver)
	}
	return nil
}

func (c *ConfigSchema) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Backend.Host, c.Backend.Port)
}

func (c *ConfigSchema) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
