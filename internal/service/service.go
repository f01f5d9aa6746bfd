// Package service реализует перенос данных между контейнерами хранилища:
// серверное копирование контейнера, разбиение файла по датам и проверку статуса копирований.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/InQaaaaGit/blob_relocator.git/internal/blobstore"
	"github.com/InQaaaaGit/blob_relocator.git/internal/config"
	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	"github.com/InQaaaaGit/blob_relocator.git/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RelocationService определяет операции сервиса переноса данных
type RelocationService interface {
	CopyContainer(ctx context.Context, req models.CopyRequest) (*models.CopyResult, error)
	SplitByDate(ctx context.Context, req models.SplitRequest) (*models.SplitResult, error)
	CopyStatus(ctx context.Context, req models.CopyStatusRequest) ([]models.CopyState, error)
	Run(ctx context.Context, runID string) ([]models.Operation, error)
	CheckConnection(ctx context.Context) error
}

// Service реализует RelocationService
type Service struct {
	cfg     *config.Config
	logger  *zap.Logger
	open    blobstore.Opener
	journal storage.Journal
	newID   func() string
	now     func() time.Time
}

// New создает сервис с заданным способом открытия хранилищ и журналом
func New(cfg *config.Config, logger *zap.Logger, open blobstore.Opener, journal storage.Journal) *Service {
	return &Service{
		cfg:     cfg,
		logger:  logger,
		open:    open,
		journal: journal,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// NewRelocationService создает сервис для Azure Blob Storage.
// Журнал выбирается по конфигурации: PostgreSQL, файл или память.
func NewRelocationService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	journal, err := newJournal(cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(cfg, logger, blobstore.OpenAzure, journal), nil
}

func newJournal(cfg *config.Config, logger *zap.Logger) (storage.Journal, error) {
	if cfg.DatabaseDSN != "" {
		logger.Info("Using PostgreSQL operation journal")
		journal, err := storage.NewPostgresJournal(cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating PostgreSQL journal: %w", err)
		}
		return journal, nil
	}

	if cfg.FileStoragePath != "" {
		logger.Info("Using file operation journal", zap.String("path", cfg.FileStoragePath))
		journal, err := storage.NewFileJournal(cfg.FileStoragePath, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating file journal: %w", err)
		}
		return journal, nil
	}

	logger.Info("Using in-memory operation journal")
	return storage.NewMemoryJournal(logger), nil
}

// Run возвращает записи журнала для запуска
func (s *Service) Run(ctx context.Context, runID string) ([]models.Operation, error) {
	return s.journal.Run(ctx, runID)
}

// CheckConnection проверяет доступность журнала
func (s *Service) CheckConnection(ctx context.Context) error {
	checker, ok := s.journal.(storage.DatabaseChecker)
	if !ok {
		return errors.New("journal does not support connection check")
	}
	return checker.CheckConnection(ctx)
}

// Close закрывает журнал
func (s *Service) Close() error {
	return s.journal.Close()
}

// openPair открывает хранилища источника и приемника
func (s *Service) openPair(sourceCS, targetCS string) (blobstore.Store, blobstore.Store, error) {
	source, err := s.open(sourceCS)
	if err != nil {
		return nil, nil, fmt.Errorf("open source account: %w", err)
	}
	target, err := s.open(targetCS)
	if err != nil {
		return nil, nil, fmt.Errorf("open target account: %w", err)
	}
	return source, target, nil
}

// record пишет операции в журнал. Ошибка журнала не прерывает запрос.
func (s *Service) record(ctx context.Context, ops []models.Operation) {
	if len(ops) == 0 {
		return
	}
	if err := s.journal.Record(context.WithoutCancel(ctx), ops); err != nil {
		s.logger.Error("Error recording operations",
			zap.String("run_id", ops[0].RunID),
			zap.Int("count", len(ops)),
			zap.Error(err))
	}
}

// outputFileName возвращает новое имя parquet файла: 32 hex символа без дефисов
func (s *Service) outputFileName() string {
	return strings.ReplaceAll(s.newID(), "-", "") + ".parquet"
}

func (s *Service) copyWorkers() int {
	return max(s.cfg.CopyWorkers, 1)
}
