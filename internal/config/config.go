// Package config загружает конфигурацию сервиса из значений по умолчанию, JSON файла,
// флагов командной строки и переменных окружения (в порядке возрастания приоритета).
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	defaultServerAddress  = ":8080"
	defaultTLSCertFile    = "server.crt"
	defaultTLSKeyFile     = "server.key"
	defaultCopyWorkers    = 8
	defaultListPageSize   = 500
	defaultSASExpiry      = 10 * time.Minute
	defaultMaxSourceBytes = 256 << 20

	// maxListPageSize - максимальный размер страницы листинга, который принимает сервис хранилища
	maxListPageSize = 5000
)

// Config хранит конфигурацию приложения.
type Config struct {
	ServerAddress   string        `env:"SERVER_ADDRESS"`    // Адрес для запуска HTTP-сервера
	ConfigFile      string        `env:"CONFIG"`            // Путь к JSON файлу конфигурации
	FileStoragePath string        `env:"FILE_STORAGE_PATH"` // Файл журнала операций
	DatabaseDSN     string        `env:"DATABASE_DSN"`      // Строка подключения к PostgreSQL для журнала
	EnableHTTPS     string        `env:"ENABLE_HTTPS"`      // Любое непустое значение, кроме false/0, включает HTTPS
	TLSCertFile     string        `env:"TLS_CERT_FILE"`
	TLSKeyFile      string        `env:"TLS_KEY_FILE"`
	CopyWorkers     int           `env:"COPY_WORKERS"`     // Одновременных запросов копирования в пределах страницы
	ListPageSize    int           `env:"LIST_PAGE_SIZE"`   // Размер страницы листинга контейнера
	SASExpiry       time.Duration `env:"SAS_EXPIRY"`       // Срок действия SAS токена источника
	MaxSourceBytes  int64         `env:"MAX_SOURCE_BYTES"` // Предельный размер файла для разбиения
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		ServerAddress:  defaultServerAddress,
		TLSCertFile:    defaultTLSCertFile,
		TLSKeyFile:     defaultTLSKeyFile,
		CopyWorkers:    defaultCopyWorkers,
		ListPageSize:   defaultListPageSize,
		SASExpiry:      defaultSASExpiry,
		MaxSourceBytes: defaultMaxSourceBytes,
	}
}

// NewConfig инициализирует конфигурацию, читая JSON файл, флаги и переменные окружения.
func NewConfig() (*Config, error) {
	cfg := Default()

	// 1. Определение флагов командной строки
	flags := *cfg
	flag.StringVar(&flags.ServerAddress, "a", cfg.ServerAddress, "Адрес запуска HTTP-сервера (env: SERVER_ADDRESS)")
	flag.StringVar(&flags.ConfigFile, "c", cfg.ConfigFile, "Путь к JSON файлу конфигурации (env: CONFIG)")
	flag.StringVar(&flags.FileStoragePath, "f", cfg.FileStoragePath, "Файл журнала операций (env: FILE_STORAGE_PATH)")
	flag.StringVar(&flags.DatabaseDSN, "d", cfg.DatabaseDSN, "Строка подключения к PostgreSQL (env: DATABASE_DSN)")
	flag.StringVar(&flags.EnableHTTPS, "s", cfg.EnableHTTPS, "Включить HTTPS (env: ENABLE_HTTPS)")
	flag.IntVar(&flags.CopyWorkers, "w", cfg.CopyWorkers, "Одновременных запросов копирования (env: COPY_WORKERS)")
	flag.IntVar(&flags.ListPageSize, "p", cfg.ListPageSize, "Размер страницы листинга (env: LIST_PAGE_SIZE)")

	// 2. Парсинг флагов командной строки
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// 3. JSON файл имеет низший приоритет после значений по умолчанию
	configFile := flags.ConfigFile
	if envFile, ok := lookupEnv("CONFIG"); ok {
		configFile = envFile
	}
	jsonConfig, err := loadJSONConfig(configFile)
	if err != nil {
		return nil, err
	}
	cfg.applyJSONConfig(jsonConfig)
	cfg.ConfigFile = configFile

	// 4. Флаги переопределяют JSON
	cfg.applyFlags(&flags, set)

	// 5. Парсинг переменных окружения (имеет наивысший приоритет)
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags переносит значения только явно заданных флагов
func (c *Config) applyFlags(flags *Config, set map[string]bool) {
	if set["a"] {
		c.ServerAddress = flags.ServerAddress
	}
	if set["f"] {
		c.FileStoragePath = flags.FileStoragePath
	}
	if set["d"] {
		c.DatabaseDSN = flags.DatabaseDSN
	}
	if set["s"] {
		c.EnableHTTPS = flags.EnableHTTPS
	}
	if set["w"] {
		c.CopyWorkers = flags.CopyWorkers
	}
	if set["p"] {
		c.ListPageSize = flags.ListPageSize
	}
}

// Validate проверяет допустимость числовых параметров
func (c *Config) Validate() error {
	var errs []error
	if c.CopyWorkers < 1 {
		errs = append(errs, fmt.Errorf("copy workers must be positive, got %d", c.CopyWorkers))
	}
	if c.ListPageSize < 1 || c.ListPageSize > maxListPageSize {
		errs = append(errs, fmt.Errorf("list page size must be in 1..%d, got %d", maxListPageSize, c.ListPageSize))
	}
	if c.SASExpiry <= 0 {
		errs = append(errs, fmt.Errorf("SAS expiry must be positive, got %s", c.SASExpiry))
	}
	if c.MaxSourceBytes < 0 {
		errs = append(errs, fmt.Errorf("max source bytes must not be negative, got %d", c.MaxSourceBytes))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// IsHTTPSEnabled сообщает, нужно ли запускать HTTPS сервер
func (c *Config) IsHTTPSEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(c.EnableHTTPS)) {
	case "", "false", "0":
		return false
	default:
		return true
	}
}
