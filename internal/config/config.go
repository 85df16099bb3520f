package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Assessment AssessmentConfig
	Email      EmailConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	// Для 'single', если не пуст, используется первый адрес из списка.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single' (для обратной совместимости).
	// Используется, если Mode="single" и Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`
}

// JWTConfig содержит настройки токенов участников
type JWTConfig struct {
	// Secret: Ключ подписи HMAC для токенов участников.
	Secret string `mapstructure:"secret"`

	// ExpirationHrs: Срок жизни токена участника в часах.
	ExpirationHrs int `mapstructure:"expirationHrs"`
}

// AssessmentConfig содержит настройки движка тестирования
type AssessmentConfig struct {
	// QuestionsPerAttempt: Сколько вопросов выбирается из пула на одну попытку.
	QuestionsPerAttempt int `mapstructure:"questions_per_attempt"`

	// DurationSeconds: Отведённое время попытки в секундах. Таймер клиентский,
	// сервер по умолчанию поздние сдачи не отклоняет (см. EnforceDeadline).
	DurationSeconds int `mapstructure:"duration_seconds"`

	// EnforceDeadline: Если true, Submit после started_at + duration + grace отклоняется.
	EnforceDeadline bool `mapstructure:"enforce_deadline"`

	// DeadlineGraceSec: Запас на сетевые задержки при включённом EnforceDeadline.
	DeadlineGraceSec int `mapstructure:"deadline_grace_sec"`

	// AttemptCacheTTLSec: TTL кеша выдачи попытки в Redis. 0 — кеш отключен.
	AttemptCacheTTLSec int `mapstructure:"attempt_cache_ttl_sec"`
}

// EmailConfig содержит настройки отправки писем через Resend
type EmailConfig struct {
	// Enabled: Если false, используется noop-отправитель.
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	From    string `mapstructure:"from"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readtimeout", 15)
	vip.SetDefault("server.writetimeout", 15)
	vip.SetDefault("assessment.questions_per_attempt", 10)
	vip.SetDefault("assessment.duration_seconds", 300)
	vip.SetDefault("assessment.enforce_deadline", false)
	vip.SetDefault("assessment.deadline_grace_sec", 30)
	vip.SetDefault("assessment.attempt_cache_ttl_sec", 0)

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции JWT
	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	// Привязка для секции Assessment
	vip.BindEnv("assessment.questions_per_attempt", "ASSESSMENT_QUESTIONS_PER_ATTEMPT")
	vip.BindEnv("assessment.duration_seconds", "ASSESSMENT_DURATION_SECONDS")
	vip.BindEnv("assessment.enforce_deadline", "ASSESSMENT_ENFORCE_DEADLINE")
	vip.BindEnv("assessment.deadline_grace_sec", "ASSESSMENT_DEADLINE_GRACE_SEC")
	vip.BindEnv("assessment.attempt_cache_ttl_sec", "ASSESSMENT_ATTEMPT_CACHE_TTL_SEC")

	// Привязка для секции Email
	vip.BindEnv("email.enabled", "EMAIL_ENABLED")
	vip.BindEnv("email.api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Путь к файлу конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только вне release-режима)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Questions Per Attempt: %d", cfg.Assessment.QuestionsPerAttempt)
		log.Printf("Attempt Duration Sec: %d", cfg.Assessment.DurationSeconds)
		log.Printf("Enforce Deadline: %t", cfg.Assessment.EnforceDeadline)
		log.Printf("Email Enabled: %t", cfg.Email.Enabled)
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Assessment.QuestionsPerAttempt <= 0 {
		return nil, fmt.Errorf("assessment.questions_per_attempt must be positive")
	}
	if cfg.Assessment.DurationSeconds <= 0 {
		return nil, fmt.Errorf("assessment.duration_seconds must be positive")
	}
	if cfg.Email.Enabled && cfg.Email.APIKey == "" {
		return nil, fmt.Errorf("email is enabled but RESEND_API_KEY is not set")
	}

	return &cfg, nil
}
