// Package storage содержит журнал операций: запущенные копирования и записанные файлы разбиения.
// Реализации: в памяти, в файле JSON lines и в PostgreSQL.
package storage

import (
	"context"

	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
)

// Journal интерфейс журнала операций
type Journal interface {
	// Record сохраняет пакет операций одного запуска
	Record(ctx context.Context, ops []models.Operation) error

	// Run возвращает операции запуска в порядке записи.
	// Возвращает ErrRunNotFound, если записей нет.
	Run(ctx context.Context, runID string) ([]models.Operation, error)

	// Close освобождает ресурсы хранилища
	Close() error
}

// DatabaseChecker интерфейс для проверки соединения с хранилищем журнала
type DatabaseChecker interface {
	// CheckConnection проверяет соединение с хранилищем
	CheckConnection(ctx context.Context) error
}
