package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/InQaaaaGit/blob_relocator.git/internal/blobstore"
	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CopyContainer запускает серверное копирование всех непустых блобов контейнера источника
// в контейнер приемника под теми же именами. Завершения копирований не ждет.
func (s *Service) CopyContainer(ctx context.Context, req models.CopyRequest) (*models.CopyResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := blobstore.AccountName(req.SourceCS)
	if err != nil {
		return nil, err
	}

	source, target, err := s.openPair(req.SourceCS, req.TargetCS)
	if err != nil {
		return nil, err
	}

	token, err := source.AccountReadSAS(s.now().Add(s.cfg.SASExpiry))
	if err != nil {
		return nil, fmt.Errorf("sign source access token: %w", err)
	}

	runID := s.newID()
	s.logger.Info("Starting container copy",
		zap.String("run_id", runID),
		zap.String("account", account),
		zap.String("source_container", req.SourceContainer),
		zap.String("target_container", req.TargetContainer))

	var (
		mu  sync.Mutex
		ops []models.Operation
	)
	err = source.ListBlobs(ctx, req.SourceContainer, int32(s.cfg.ListPageSize), func(page []blobstore.BlobItem) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.copyWorkers())

		for _, item := range page {
			// Пустые элементы - маркеры каталогов
			if item.Size == 0 {
				continue
			}
			g.Go(func() error {
				sourceURL := source.BlobURL(req.SourceContainer, item.Name) + "?" + token
				info, err := target.StartCopyFromURL(gctx, req.TargetContainer, item.Name, sourceURL)
				if err != nil {
					return fmt.Errorf("start copy of %s: %w", item.Name, err)
				}

				mu.Lock()
				defer mu.Unlock()
				ops = append(ops, models.Operation{
					RunID:           runID,
					Kind:            models.KindCopy,
					SourceContainer: req.SourceContainer,
					SourceBlob:      item.Name,
					TargetContainer: req.TargetContainer,
					TargetBlob:      item.Name,
					CopyID:          info.CopyID,
					Status:          info.Status,
					Size:            item.Size,
					CreatedAt:       s.now().UTC(),
				})
				return nil
			})
		}
		return g.Wait()
	})

	slices.SortFunc(ops, func(a, b models.Operation) int { return strings.Compare(a.TargetBlob, b.TargetBlob) })
	s.record(ctx, ops)

	if err != nil {
		s.logger.Error("Container copy interrupted",
			zap.String("run_id", runID),
			zap.Int("issued", len(ops)),
			zap.Error(err))
		return nil, fmt.Errorf("copy container %s: %w", req.SourceContainer, err)
	}

	s.logger.Info("Container copy issued",
		zap.String("run_id", runID),
		zap.Int("copied", len(ops)))

	return &models.CopyResult{RunID: runID, Copied: len(ops)}, nil
}
