package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	"go.uber.org/zap"
)

// FileJournal реализует Journal поверх файла JSON lines (одна операция на строку)
type FileJournal struct {
	filePath string
	runs     map[string][]models.Operation
	mutex    sync.RWMutex
	file     *os.File
	logger   *zap.Logger
}

// NewFileJournal открывает файл журнала и загружает ранее записанные операции
func NewFileJournal(filePath string, logger *zap.Logger) (*FileJournal, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening journal file: %w", err)
	}

	fj := &FileJournal{
		filePath: filePath,
		file:     file,
		runs:     make(map[string][]models.Operation),
		logger:   logger,
	}

	// Поврежденный хвост обрезается, записанные до него операции остаются доступны
	if err := fj.loadFromFile(); err != nil {
		logger.Error("Error loading journal from file", zap.String("path", filePath), zap.Error(err))
	}

	return fj, nil
}

// loadFromFile читает операции из файла.
// Файл обрезается до конца последней целой записи, иначе новые строки
// дописываются после нечитаемых байт и теряются при следующем открытии.
func (fj *FileJournal) loadFromFile() error {
	fj.mutex.Lock()
	defer fj.mutex.Unlock()

	if _, err := fj.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to file start: %w", err)
	}

	var (
		valid     int64
		decodeErr error
	)
	decoder := json.NewDecoder(fj.file)
	for decoder.More() {
		var op models.Operation
		if err := decoder.Decode(&op); err != nil {
			decodeErr = fmt.Errorf("error decoding operation at offset %d: %w", valid, err)
			break
		}
		valid = decoder.InputOffset()
		fj.runs[op.RunID] = append(fj.runs[op.RunID], op)
	}

	if decodeErr != nil {
		if err := fj.file.Truncate(valid); err != nil {
			return errors.Join(decodeErr, fmt.Errorf("error truncating journal file: %w", err))
		}
		fj.logger.Warn("Truncated corrupted journal tail",
			zap.String("path", fj.filePath),
			zap.Int64("offset", valid),
		)
	}

	if err := fj.terminateLastLine(); err != nil {
		return errors.Join(decodeErr, err)
	}
	return decodeErr
}

// terminateLastLine дописывает перевод строки, если файл не пуст и не заканчивается им
func (fj *FileJournal) terminateLastLine() error {
	info, err := fj.file.Stat()
	if err != nil {
		return fmt.Errorf("error reading journal file info: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}

	last := make([]byte, 1)
	if _, err := fj.file.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("error reading journal file tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := fj.file.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("error writing to journal file: %w", err)
	}
	return nil
}

// Record дописывает операции в файл
func (fj *FileJournal) Record(ctx context.Context, ops []models.Operation) error {
	fj.mutex.Lock()
	defer fj.mutex.Unlock()

	if fj.file == nil {
		return fmt.Errorf("journal file is closed")
	}

	for _, op := range ops {
		data, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("error marshaling operation: %w", err)
		}
		if _, err := fj.file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("error writing to journal file: %w", err)
		}
		fj.runs[op.RunID] = append(fj.runs[op.RunID], op)
	}

	return nil
}

// Run возвращает операции запуска
func (fj *FileJournal) Run(ctx context.Context, runID string) ([]models.Operation, error) {
	fj.mutex.RLock()
	defer fj.mutex.RUnlock()

	ops, ok := fj.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return slices.Clone(ops), nil
}

// CheckConnection проверяет, что файл журнала открыт
func (fj *FileJournal) CheckConnection(ctx context.Context) error {
	fj.mutex.RLock()
	defer fj.mutex.RUnlock()

	if fj.file == nil {
		return fmt.Errorf("journal file is not open")
	}

	return nil
}

// Close синхронизирует и закрывает файл
func (fj *FileJournal) Close() error {
	fj.mutex.Lock()
	defer fj.mutex.Unlock()

	if fj.file != nil {
		if err := fj.file.Sync(); err != nil {
			fj.logger.Error("Error syncing journal before close", zap.Error(err))
		}

		if err := fj.file.Close(); err != nil {
			return fmt.Errorf("error closing journal file: %w", err)
		}
		fj.file = nil
	}

	return nil
}
