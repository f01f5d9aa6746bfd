package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
)

// newTestPostgres подключается к базе из TEST_DATABASE_DSN или пропускает тест
func newTestPostgres(t *testing.T) *PostgresJournal {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping PostgreSQL test in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	journal, err := NewPostgresJournal(dsn, zap.NewNop())
	if err != nil {
		t.Skipf("PostgreSQL не доступен: %v", err)
	}
	t.Cleanup(func() { journal.Close() })
	return journal
}

func TestPostgresJournalRecordAndRun(t *testing.T) {
	journal := newTestPostgres(t)
	ctx := context.Background()
	runID := uuid.NewString()

	require.NoError(t, journal.Record(ctx, []models.Operation{copyOp(runID, "a.json"), copyOp(runID, "b.json")}))

	ops, err := journal.Run(ctx, runID)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "a.json", ops[0].TargetBlob)
	assert.Equal(t, models.KindCopy, ops[1].Kind)
	assert.Equal(t, int64(42), ops[1].Size)

	_, err = journal.Run(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.NoError(t, journal.CheckConnection(ctx))
}

func TestPostgresJournalEmptyBatch(t *testing.T) {
	journal := newTestPostgres(t)
	assert.NoError(t, journal.Record(context.Background(), nil))
}
