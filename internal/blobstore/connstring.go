package blobstore

import (
	"fmt"
	"strings"
)

const defaultEndpointSuffix = "core.windows.net"

// ConnectionString хранит пары ключ=значение строки подключения к хранилищу
type ConnectionString map[string]string

// ParseConnectionString разбирает строку вида key1=value1;key2=value2.
// Значение может содержать '=' (base64 ключа), ключ отделяется по первому знаку.
func ParseConnectionString(cs string) (ConnectionString, error) {
	parsed := make(ConnectionString)
	for _, segment := range strings.Split(cs, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		key, value, ok := strings.Cut(segment, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: segment without key", ErrMalformedConnectionString)
		}
		parsed[key] = value
	}
	if parsed.AccountName() == "" {
		return nil, fmt.Errorf("%w: AccountName not found", ErrMalformedConnectionString)
	}
	return parsed, nil
}

// AccountName извлекает имя аккаунта из строки подключения
func AccountName(cs string) (string, error) {
	parsed, err := ParseConnectionString(cs)
	if err != nil {
		return "", err
	}
	return parsed.AccountName(), nil
}

// AccountName возвращает значение AccountName
func (c ConnectionString) AccountName() string {
	return c["AccountName"]
}

// AccountKey возвращает значение AccountKey
func (c ConnectionString) AccountKey() string {
	return c["AccountKey"]
}

// BlobEndpoint возвращает адрес blob сервиса аккаунта без завершающего слэша
func (c ConnectionString) BlobEndpoint() string {
	if endpoint := c["BlobEndpoint"]; endpoint != "" {
		return strings.TrimSuffix(endpoint, "/")
	}
	protocol := c["DefaultEndpointsProtocol"]
	if protocol == "" {
		protocol = "https"
	}
	suffix := c["EndpointSuffix"]
	if suffix == "" {
		suffix = defaultEndpointSuffix
	}
	return fmt.Sprintf("%s://%s.blob.%s", protocol, c.AccountName(), suffix)
}
