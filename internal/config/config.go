package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres, mysql, sqlite, memory
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	Gateway struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gateway"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Storage struct {
		Type       string `yaml:"type"`        // local, s3, cloudflare_r2
		BasePath   string `yaml:"base_path"`   // For local storage
		BaseURL    string `yaml:"base_url"`    // Public URL base
		Bucket     string `yaml:"bucket"`      // For S3/R2
		Region     string `yaml:"region"`      // For S3
		AccessKey  string `yaml:"access_key"`  // For S3/R2
		SecretKey  string `yaml:"secret_key"`  // For S3/R2
		Endpoint   string `yaml:"endpoint"`    // For R2 or custom S3
		PublicRead bool   `yaml:"public_read"` // Make files public
	} `yaml:"storage"`

	Upload struct {
		MaxSize int64 `yaml:"max_size"` // Max file size in bytes
	} `yaml:"upload"`

	Chat struct {
		RedisURL string `yaml:"redis_url"` // пусто = релей только в пределах процесса
		Channel  string `yaml:"channel"`
	} `yaml:"chat"`

	FirstAdminEmail string `yaml:"first_admin_email"`
	FirstAdminName  string `yaml:"first_admin_name"`
}

var AppConfig *Config

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 3000
	cfg.Server.Env = "development"

	cfg.Database.Driver = "memory"

	cfg.Gateway.BaseURL = "https://sandbox.asaas.com/api/v3/"
	cfg.Gateway.TimeoutSeconds = 30

	cfg.Email.SMTPPort = 587

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/uploads"

	cfg.Upload.MaxSize = 20 * 1024 * 1024 // 20MB

	cfg.Chat.Channel = "chat"

	return &cfg
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл (если есть),
// затем переменные окружения.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// файл необязателен
		default:
			return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig() {
	// .env нужен только для локальной разработки
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Не удалось прочитать .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	AppConfig = cfg
}

func applyEnv(cfg *Config) error {
	envString(&cfg.Server.Host, "SERVER_HOST")
	envString(&cfg.Server.Env, "SERVER_ENV")
	envString(&cfg.Database.Driver, "DATABASE_DRIVER")
	envString(&cfg.Database.DSN, "DATABASE_URL")
	envString(&cfg.Gateway.BaseURL, "ASAAS_API")
	envString(&cfg.Gateway.APIKey, "ASAAS_API_KEY")
	envString(&cfg.Email.SMTPHost, "SMTP_HOST")
	envString(&cfg.Email.SMTPUsername, "SMTP_USER")
	envString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	envString(&cfg.Email.FromEmail, "EMAIL_FROM")
	envString(&cfg.Email.FromName, "EMAIL_FROM_NAME")
	envString(&cfg.Storage.Type, "STORAGE_TYPE")
	envString(&cfg.Storage.BasePath, "STORAGE_BASE_PATH")
	envString(&cfg.Storage.BaseURL, "STORAGE_BASE_URL")
	envString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	envString(&cfg.Storage.Region, "STORAGE_REGION")
	envString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	envString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	envString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	envString(&cfg.Chat.RedisURL, "CHAT_REDIS_URL")
	envString(&cfg.FirstAdminEmail, "FIRST_ADMIN_EMAIL")
	envString(&cfg.FirstAdminName, "FIRST_ADMIN_NAME")

	// SERVER_PORT имеет приоритет над PORT
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if err := envInt(&cfg.Server.Port, key); err != nil {
			return err
		}
	}

	for key, dst := range map[string]*int{
		"SMTP_PORT":             &cfg.Email.SMTPPort,
		"ASAAS_TIMEOUT_SECONDS": &cfg.Gateway.TimeoutSeconds,
	} {
		if err := envInt(dst, key); err != nil {
			return err
		}
	}
	return nil
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

// GatewayTimeout - таймаут HTTP-клиента платежного шлюза
func (c *Config) GatewayTimeout() time.Duration {
	if c.Gateway.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Gateway.TimeoutSeconds) * time.Second
}

// Addr - адрес для http-сервера
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
