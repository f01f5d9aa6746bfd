package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	"go.uber.org/zap"
)

// MemoryJournal реализует Journal в памяти процесса
type MemoryJournal struct {
	mu     sync.RWMutex
	runs   map[string][]models.Operation
	logger *zap.Logger
}

// NewMemoryJournal создает новый экземпляр MemoryJournal
func NewMemoryJournal(logger *zap.Logger) *MemoryJournal {
	return &MemoryJournal{
		runs:   make(map[string][]models.Operation),
		logger: logger,
	}
}

// Record добавляет операции к запуску
func (mj *MemoryJournal) Record(ctx context.Context, ops []models.Operation) error {
	mj.mu.Lock()
	defer mj.mu.Unlock()

	for _, op := range ops {
		mj.runs[op.RunID] = append(mj.runs[op.RunID], op)
	}
	return nil
}

// Run возвращает копию операций запуска
func (mj *MemoryJournal) Run(ctx context.Context, runID string) ([]models.Operation, error) {
	mj.mu.RLock()
	defer mj.mu.RUnlock()

	ops, ok := mj.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return slices.Clone(ops), nil
}

// CheckConnection проверяет доступность хранилища
func (mj *MemoryJournal) CheckConnection(ctx context.Context) error {
	mj.mu.RLock()
	defer mj.mu.RUnlock()

	if mj.runs == nil {
		return fmt.Errorf("journal is not initialized")
	}
	return nil
}

// Close ничего не делает для хранилища в памяти
func (mj *MemoryJournal) Close() error {
	return nil
}
