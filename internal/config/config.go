// Package config предоставляет структуры и функции для загрузки конфигурации портала.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	Registration            `yaml:"registration"`
	Recaptcha               `yaml:"recaptcha"`
	Membership              `yaml:"membership"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"5"`
	RateBurst   int           `yaml:"rate_burst" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кеш метаданных.
type RedisConnection struct {
	RedisAddress     string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	RedisPassword    string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser        string        `yaml:"user"`
	RedisDB          int           `yaml:"db"`
	RedisMaxRetries  int           `yaml:"max_retries"`
	RedisDialTimeout time.Duration `yaml:"dial_timeout"`
	RedisTimeout     time.Duration `yaml:"timeoutredis"`
	RedisTTL         time.Duration `yaml:"ttl" env-default:"10m"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ настройки публикации событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitExchange   string        `yaml:"exchange" env-default:"notifications"`
	RabbitRoutingKey string        `yaml:"routing_key" env-default:"registered"`
	RabbitMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Registration настройки регистрации и адреса редиректов.
type Registration struct {
	RegistrationDisabled bool   `yaml:"disabled" env:"REGISTRATION_DISABLED"`
	RegistrationPageURL  string `yaml:"page_url" env-default:"/register"`
	HomeURL              string `yaml:"home_url" env-default:"/"`
	DashboardURL         string `yaml:"dashboard_url" env-default:"/dashboard"`
	AdminURL             string `yaml:"admin_url" env-default:"/admin"`
}

// Recaptcha настройки проверки Google reCAPTCHA. Проверка включена,
// только если заданы оба ключа.
type Recaptcha struct {
	RecaptchaSiteKey   string        `yaml:"site_key" env:"RECAPTCHA_SITE_KEY"`
	RecaptchaSecretKey string        `yaml:"secret_key" env:"RECAPTCHA_SECRET_KEY"`
	RecaptchaVerifyURL string        `yaml:"verify_url" env-default:"https://www.google.com/recaptcha/api/siteverify"`
	RecaptchaTimeout   time.Duration `yaml:"timeout" env-default:"5s"`
}

// Membership настройки расчёта сроков абонемента.
type Membership struct {
	Timezone string `yaml:"timezone" env:"MEMBERSHIP_TIMEZONE" env-default:"UTC"`
}

// SMTP настройки отправки приветственных писем.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
}

// Load читает конфиг из YAML файла, переменные окружения перекрывают значения из файла.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH. В окружении dev
// предварительно подхватывается .env файл.
func MustLoad() *Config {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// RegistrationEnabled сообщает, открыта ли регистрация новых пользователей.
func (c *Config) RegistrationEnabled() bool {
	return !c.RegistrationDisabled
}

// CaptchaEnabled сообщает, настроены ли оба ключа reCAPTCHA.
func (c *Config) CaptchaEnabled() bool {
	return c.RecaptchaSiteKey != "" && c.RecaptchaSecretKey != ""
}

// Location возвращает часовой пояс расчёта абонементов, при ошибке — UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"  TTL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n"+
			"Registration:\n"+
			"  Enabled: %t\n"+
			"Recaptcha:\n"+
			"  SiteKey: %s\n"+
			"  SecretKey: %s\n"+
			"Membership:\n"+
			"  Timezone: %s\n"+
			"SMTP:\n"+
			"  Host: %s\n"+
			"  User: %s\n"+
			"  Password: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.RedisAddress,
		mask(c.RedisPassword),
		c.RedisDB,
		c.RedisTTL,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		mask(c.JWTSecretKey),
		c.TokenTTL,
		mask(c.RabbitURL),
		c.RabbitExchange,
		c.RegistrationEnabled(),
		c.RecaptchaSiteKey,
		mask(c.RecaptchaSecretKey),
		c.Timezone,
		c.SMTPHost,
		c.SMTPUser,
		mask(c.SMTPPass),
	)
}
