package service

import (
	"context"
	"fmt"

	"github.com/InQaaaaGit/blob_relocator.git/internal/frame"
	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	"go.uber.org/zap"
)

// dateColumn - колонка, по которой строки делятся на группы
const dateColumn = "date"

// SplitByDate скачивает zip архив с NDJSON, делит строки по значению колонки date
// и записывает каждую группу отдельным parquet файлом в каталог своего дня.
// Уже записанные группы при ошибке не откатываются.
func (s *Service) SplitByDate(ctx context.Context, req models.SplitRequest) (*models.SplitResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	source, target, err := s.openPair(req.SourceCS, req.TargetCS)
	if err != nil {
		return nil, err
	}

	data, err := source.Download(ctx, req.SourceContainer, req.FileName, s.cfg.MaxSourceBytes)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", req.FileName, err)
	}

	f, err := frame.DecodeZippedNDJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", req.FileName, err)
	}

	groups, err := f.GroupByDate(dateColumn)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", req.FileName, err)
	}

	runID := s.newID()
	s.logger.Info("Splitting file by date",
		zap.String("run_id", runID),
		zap.String("file_name", req.FileName),
		zap.Int("rows", f.Len()),
		zap.Int("groups", len(groups)))

	result := &models.SplitResult{RunID: runID}
	ops := make([]models.Operation, 0, len(groups))
	for _, group := range groups {
		day := group.Date.Day()
		part := f.Take(group.Rows)

		payload, err := part.EncodeParquet()
		if err != nil {
			s.record(ctx, ops)
			return nil, fmt.Errorf("encode group for day %d: %w", day, err)
		}

		name := TargetPath(req.FileName, day) + "/" + s.outputFileName()
		if err := target.Upload(ctx, req.TargetContainer, name, payload, frame.ParquetContentType); err != nil {
			s.record(ctx, ops)
			return nil, fmt.Errorf("upload %s: %w", name, err)
		}

		result.Files = append(result.Files, models.OutputFile{Path: name, Day: day, Rows: part.Len()})
		ops = append(ops, models.Operation{
			RunID:           runID,
			Kind:            models.KindSplit,
			SourceContainer: req.SourceContainer,
			SourceBlob:      req.FileName,
			TargetContainer: req.TargetContainer,
			TargetBlob:      name,
			Size:            int64(len(payload)),
			Rows:            int64(part.Len()),
			CreatedAt:       s.now().UTC(),
		})
	}
	s.record(ctx, ops)

	s.logger.Info("File split by date",
		zap.String("run_id", runID),
		zap.Int("files", len(result.Files)))

	return result, nil
}
