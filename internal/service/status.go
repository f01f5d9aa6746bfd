package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/InQaaaaGit/blob_relocator.git/internal/blobstore"
	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	"github.com/InQaaaaGit/blob_relocator.git/internal/storage"
)

// statusMissing - блоб из журнала отсутствует в контейнере приемника
const statusMissing = "missing"

// CopyStatus читает текущее состояние копирований запуска из свойств блобов приемника
func (s *Service) CopyStatus(ctx context.Context, req models.CopyStatusRequest) ([]models.CopyState, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ops, err := s.journal.Run(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	target, err := s.open(req.TargetCS)
	if err != nil {
		return nil, fmt.Errorf("open target account: %w", err)
	}

	var states []models.CopyState
	for _, op := range ops {
		if op.Kind != models.KindCopy || op.TargetContainer != req.TargetContainer {
			continue
		}

		info, err := target.CopyStatus(ctx, op.TargetContainer, op.TargetBlob)
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			states = append(states, models.CopyState{Blob: op.TargetBlob, CopyID: op.CopyID, Status: statusMissing})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read copy status of %s: %w", op.TargetBlob, err)
		}

		states = append(states, models.CopyState{
			Blob:        op.TargetBlob,
			CopyID:      info.CopyID,
			Status:      info.Status,
			Progress:    info.Progress,
			Description: info.Description,
		})
	}

	if len(states) == 0 {
		return nil, fmt.Errorf("%w: no copies into %s", storage.ErrRunNotFound, req.TargetContainer)
	}
	return states, nil
}
