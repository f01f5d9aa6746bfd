package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func copyOp(runID, blob string) models.Operation {
	return models.Operation{
		RunID:           runID,
		Kind:            models.KindCopy,
		SourceContainer: "bronze",
		SourceBlob:      blob,
		TargetContainer: "silver",
		TargetBlob:      blob,
		CopyID:          "copy-" + blob,
		Status:          "pending",
		Size:            42,
		CreatedAt:       time.Date(2022, 6, 24, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemoryJournalRecordAndRun(t *testing.T) {
	journal := NewMemoryJournal(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, journal.Record(ctx, []models.Operation{copyOp("run-1", "a.json"), copyOp("run-1", "b.json")}))
	require.NoError(t, journal.Record(ctx, []models.Operation{copyOp("run-2", "c.json")}))

	ops, err := journal.Run(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "a.json", ops[0].TargetBlob)
	assert.Equal(t, "b.json", ops[1].TargetBlob)

	_, err = journal.Run(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.NoError(t, journal.CheckConnection(ctx))
	assert.NoError(t, journal.Close())
}

func TestMemoryJournalRunReturnsCopy(t *testing.T) {
	journal := NewMemoryJournal(zap.NewNop())
	ctx := context.Background()
	require.NoError(t, journal.Record(ctx, []models.Operation{copyOp("run-1", "a.json")}))

	ops, err := journal.Run(ctx, "run-1")
	require.NoError(t, err)
	ops[0].Status = "changed"

	again, err := journal.Run(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", again[0].Status)
}

func TestMemoryJournalConcurrentRecord(t *testing.T) {
	journal := NewMemoryJournal(zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, journal.Record(ctx, []models.Operation{copyOp("run", fmt.Sprintf("%d.json", i))}))
		}(i)
	}
	wg.Wait()

	ops, err := journal.Run(ctx, "run")
	require.NoError(t, err)
	assert.Len(t, ops, 50)
}
