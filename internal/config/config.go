// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	FrontendURL             string `yaml:"frontend_url"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	Gateways                `yaml:"gateways"`
	OTP                     `yaml:"otp"`
	Auth                    `yaml:"auth"`
	SMTP                    `yaml:"smtp"`
	SMS                     `yaml:"sms"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ структура для настройки подключения к брокеру уведомлений
type RabbitMQ struct {
	ConnectionString string        `yaml:"connection_string"`
	ConnectRetries   int           `yaml:"connect_retries" env-default:"5"`
	ConnectDelay     time.Duration `yaml:"connect_delay" env-default:"3s"`
}

// Gateways структура с учётными данными платёжных шлюзов
type Gateways struct {
	DefaultGateway    string `yaml:"default_gateway" env-default:"zarinpal"`
	CallbackURL       string `yaml:"callback_url"`
	ZarinpalMerchant  string `yaml:"zarinpal_merchant_id"`
	ZarinpalSandbox   bool   `yaml:"zarinpal_sandbox"`
	IDPayAPIKey       string `yaml:"idpay_api_key"`
	IDPaySandbox      bool   `yaml:"idpay_sandbox"`
	EnableMockGateway bool   `yaml:"enable_mock_gateway"`
}

// OTP структура с настройками одноразовых кодов входа
type OTP struct {
	CodeLength  int           `yaml:"code_length" env-default:"6"`
	CodeTTL     time.Duration `yaml:"code_ttl" env-default:"2m"`
	MaxAttempts int           `yaml:"max_attempts" env-default:"5"`
	RateMax     int           `yaml:"rate_max" env-default:"3"`
	RateWindow  time.Duration `yaml:"rate_window" env-default:"10m"`
}

// Auth структура с настройками ключей API
type Auth struct {
	MasterKey string `yaml:"master_key" env:"MASTER_API_KEY"`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// SMS структура для настройки SMS-провайдера
type SMS struct {
	SMSAPIURL string `yaml:"sms_api_url"`
	SMSAPIKey string `yaml:"sms_api_key" env:"SMS_API_KEY"`
	SMSSender string `yaml:"sms_sender"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной
// окружения CONFIG_PATH; при ошибке процесс завершается
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
