package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// JSONConfig описывает JSON файл конфигурации. Отсутствующие поля не меняют значения.
type JSONConfig struct {
	ServerAddress   *string `json:"server_address,omitempty"`
	FileStoragePath *string `json:"file_storage_path,omitempty"`
	DatabaseDSN     *string `json:"database_dsn,omitempty"`
	EnableHTTPS     *bool   `json:"enable_https,omitempty"`
	TLSCertFile     *string `json:"tls_cert_file,omitempty"`
	TLSKeyFile      *string `json:"tls_key_file,omitempty"`
	CopyWorkers     *int    `json:"copy_workers,omitempty"`
	ListPageSize    *int    `json:"list_page_size,omitempty"`
	SASExpiry       *string `json:"sas_expiry,omitempty"` // в формате time.ParseDuration, например "10m"
	MaxSourceBytes  *int64  `json:"max_source_bytes,omitempty"`
}

// loadJSONConfig читает файл конфигурации. Пустое имя или отсутствующий файл дают пустую конфигурацию.
func loadJSONConfig(filename string) (*JSONConfig, error) {
	cfg := &JSONConfig{}
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", filename, err)
	}
	if cfg.SASExpiry != nil {
		if _, err := time.ParseDuration(*cfg.SASExpiry); err != nil {
			return nil, fmt.Errorf("error parsing sas_expiry: %w", err)
		}
	}
	return cfg, nil
}

// applyJSONConfig переносит заданные в файле значения
func (c *Config) applyJSONConfig(j *JSONConfig) {
	if j == nil {
		return
	}
	if j.ServerAddress != nil {
		c.ServerAddress = *j.ServerAddress
	}
	if j.FileStoragePath != nil {
		c.FileStoragePath = *j.FileStoragePath
	}
	if j.DatabaseDSN != nil {
		c.DatabaseDSN = *j.DatabaseDSN
	}
	if j.EnableHTTPS != nil {
		c.EnableHTTPS = strconv.FormatBool(*j.EnableHTTPS)
	}
	if j.TLSCertFile != nil {
		c.TLSCertFile = *j.TLSCertFile
	}
	if j.TLSKeyFile != nil {
		c.TLSKeyFile = *j.TLSKeyFile
	}
	if j.CopyWorkers != nil {
		c.CopyWorkers = *j.CopyWorkers
	}
	if j.ListPageSize != nil {
		c.ListPageSize = *j.ListPageSize
	}
	if j.SASExpiry != nil {
		// формат уже проверен в loadJSONConfig
		if d, err := time.ParseDuration(*j.SASExpiry); err == nil {
			c.SASExpiry = d
		}
	}
	if j.MaxSourceBytes != nil {
		c.MaxSourceBytes = *j.MaxSourceBytes
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	return value, ok && value != ""
}
