// Package blobstore предоставляет узкий интерфейс к объектному хранилищу Azure Blob Storage.
// Сервисный слой работает только через Store, поэтому в тестах используется MemoryStore.
package blobstore

import (
	"context"
	"errors"
	"time"
)

// ErrMalformedConnectionString возвращается, когда строку подключения не удалось разобрать
var ErrMalformedConnectionString = errors.New("malformed connection string")

// ErrNoSharedKey возвращается, когда строка подключения не содержит AccountKey и SAS подписать нечем
var ErrNoSharedKey = errors.New("connection string has no account key")

// ErrSourceTooLarge возвращается, когда скачиваемый блоб превышает допустимый размер
var ErrSourceTooLarge = errors.New("source blob exceeds size limit")

// ErrBlobNotFound возвращается, когда блоб отсутствует в контейнере
var ErrBlobNotFound = errors.New("blob not found")

// BlobItem описывает один элемент листинга контейнера
type BlobItem struct {
	Name string
	Size int64
}

// CopyInfo описывает состояние серверного копирования
type CopyInfo struct {
	CopyID      string
	Status      string
	Progress    string
	Description string
}

// Store определяет операции над одним аккаунтом хранилища
type Store interface {
	// AccountName возвращает имя аккаунта хранилища
	AccountName() string

	// ListBlobs постранично перечисляет блобы контейнера и вызывает fn для каждой страницы
	ListBlobs(ctx context.Context, container string, pageSize int32, fn func(page []BlobItem) error) error

	// AccountReadSAS выпускает SAS токен аккаунта только на чтение объектов
	AccountReadSAS(expiry time.Time) (string, error)

	// BlobURL возвращает полный адрес блоба без токена
	BlobURL(container, name string) string

	// StartCopyFromURL запускает серверное копирование и не ждет его завершения
	StartCopyFromURL(ctx context.Context, container, name, sourceURL string) (CopyInfo, error)

	// Download скачивает блоб целиком, limit <= 0 означает отсутствие ограничения
	Download(ctx context.Context, container, name string, limit int64) ([]byte, error)

	// Upload записывает блоб, перезаписывая существующий
	Upload(ctx context.Context, container, name string, data []byte, contentType string) error

	// CopyStatus читает состояние копирования из свойств блоба
	CopyStatus(ctx context.Context, container, name string) (CopyInfo, error)
}

// Opener открывает Store по строке подключения
type Opener func(connectionString string) (Store, error)
