package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/InQaaaaGit/blob_relocator.git/internal/blobstore"
	"github.com/InQaaaaGit/blob_relocator.git/internal/config"
	"github.com/InQaaaaGit/blob_relocator.git/internal/frame"
	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	"github.com/InQaaaaGit/blob_relocator.git/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockRelocationService реализует интерфейс service.RelocationService для тестов
type mockRelocationService struct {
	copyContainerFunc   func(ctx context.Context, req models.CopyRequest) (*models.CopyResult, error)
	splitByDateFunc     func(ctx context.Context, req models.SplitRequest) (*models.SplitResult, error)
	copyStatusFunc      func(ctx context.Context, req models.CopyStatusRequest) ([]models.CopyState, error)
	runFunc             func(ctx context.Context, runID string) ([]models.Operation, error)
	checkConnectionFunc func(ctx context.Context) error
}

func (m *mockRelocationService) CopyContainer(ctx context.Context, req models.CopyRequest) (*models.CopyResult, error) {
	if m.copyContainerFunc != nil {
		return m.copyContainerFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRelocationService) SplitByDate(ctx context.Context, req models.SplitRequest) (*models.SplitResult, error) {
	if m.splitByDateFunc != nil {
		return m.splitByDateFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRelocationService) CopyStatus(ctx context.Context, req models.CopyStatusRequest) ([]models.CopyState, error) {
	if m.copyStatusFunc != nil {
		return m.copyStatusFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRelocationService) Run(ctx context.Context, runID string) ([]models.Operation, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, runID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRelocationService) CheckConnection(ctx context.Context) error {
	if m.checkConnectionFunc != nil {
		return m.checkConnectionFunc(ctx)
	}
	return errors.New("not implemented")
}

func newTestHandler(svc *mockRelocationService) *Handler {
	return NewHandler(svc, config.Default(), zap.NewNop())
}

const copyBody = `{"source_container":"raw","target_container":"mirror","source_cs":"AccountName=a;AccountKey=a2V5","target_cs":"AccountName=b;AccountKey=a2V5"}`

func TestHandleCopyContainer(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		serviceErr  error
		wantStatus  int
		wantBody    string
		wantRunID   bool
		wantService bool
	}{
		{
			name:        "copied",
			body:        copyBody,
			wantStatus:  http.StatusOK,
			wantBody:    "Copied 3 files from source: raw to target:mirror",
			wantRunID:   true,
			wantService: true,
		},
		{
			name:        "missing field",
			body:        `{"source_container":"raw"}`,
			serviceErr:  fmt.Errorf("%w: missing source_cs", models.ErrInvalidInput),
			wantStatus:  http.StatusBadRequest,
			wantBody:    "Invalid inputs\n",
			wantService: true,
		},
		{
			name:       "malformed json",
			body:       `{"source_container":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid inputs\n",
		},
		{
			name:        "malformed connection string",
			body:        copyBody,
			serviceErr:  fmt.Errorf("open source account: %w", blobstore.ErrMalformedConnectionString),
			wantStatus:  http.StatusInternalServerError,
			wantBody:    "Internal server error\n",
			wantService: true,
		},
		{
			name:        "storage fault",
			body:        copyBody,
			serviceErr:  errors.New("403 AuthorizationFailure"),
			wantStatus:  http.StatusInternalServerError,
			wantBody:    "Internal server error\n",
			wantService: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockRelocationService{
				copyContainerFunc: func(_ context.Context, req models.CopyRequest) (*models.CopyResult, error) {
					called = true
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					assert.Equal(t, "raw", req.SourceContainer)
					assert.Equal(t, "mirror", req.TargetContainer)
					return &models.CopyResult{RunID: "run-1", Copied: 3}, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/api/copy_container", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			newTestHandler(svc).HandleCopyContainer(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			assert.Equal(t, tt.wantService, called)
			if tt.wantRunID {
				assert.Equal(t, "run-1", w.Header().Get("X-Run-ID"))
				assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
			} else {
				assert.Empty(t, w.Header().Get("X-Run-ID"))
			}
		})
	}
}

func TestHandleSplitByDate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "split",
			body:       `{"file_name":"a/b/d=24/f.zip","source_container":"in","target_container":"out","source_cs":"x","target_cs":"y"}`,
			wantStatus: http.StatusOK,
			wantBody:   "split function executed succesfuly",
		},
		{
			name:       "missing field",
			body:       `{"file_name":"a/b/d=24/f.zip"}`,
			serviceErr: fmt.Errorf("%w: missing source_cs", models.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantBody:   "Input failed validation\n",
		},
		{
			name:       "empty body",
			wantStatus: http.StatusBadRequest,
			wantBody:   "Input failed validation\n",
		},
		{
			name:       "decode fault",
			body:       `{"file_name":"a/b/d=24/f.zip","source_container":"in","target_container":"out","source_cs":"x","target_cs":"y"}`,
			serviceErr: fmt.Errorf("decode: %w", frame.ErrMissingDateColumn),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal server error\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRelocationService{
				splitByDateFunc: func(_ context.Context, req models.SplitRequest) (*models.SplitResult, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					assert.Equal(t, "a/b/d=24/f.zip", req.FileName)
					return &models.SplitResult{RunID: "run-2"}, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/api/split_by_date", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			newTestHandler(svc).HandleSplitByDate(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "run-2", w.Header().Get("X-Run-ID"))
			}
		})
	}
}

func TestHandleCopyStatus(t *testing.T) {
	states := []models.CopyState{
		{Blob: "a.json", CopyID: "c1", Status: "success", Progress: "1/1"},
		{Blob: "b.json", CopyID: "c2", Status: "pending", Progress: "0/2"},
	}

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "states", wantStatus: http.StatusOK},
		{name: "invalid", serviceErr: models.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "unknown run", serviceErr: storage.ErrRunNotFound, wantStatus: http.StatusNotFound},
		{name: "storage fault", serviceErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRelocationService{
				copyStatusFunc: func(_ context.Context, req models.CopyStatusRequest) ([]models.CopyState, error) {
					assert.Equal(t, "run-1", req.RunID)
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return states, nil
				},
			}

			body := `{"run_id":"run-1","target_container":"mirror","target_cs":"AccountName=b;AccountKey=a2V5"}`
			req := httptest.NewRequest(http.MethodPost, "/api/copy_container/status", strings.NewReader(body))
			w := httptest.NewRecorder()
			newTestHandler(svc).HandleCopyStatus(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var got []models.CopyState
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, states, got)
		})
	}
}

func TestHandleGetRun(t *testing.T) {
	svc := &mockRelocationService{
		runFunc: func(_ context.Context, runID string) ([]models.Operation, error) {
			if runID != "run-1" {
				return nil, storage.ErrRunNotFound
			}
			return []models.Operation{{RunID: "run-1", Kind: models.KindSplit, TargetBlob: "a//b/d=1/x.parquet", Rows: 3}}, nil
		},
	}
	router := chi.NewRouter()
	router.Get("/api/runs/{runID}", newTestHandler(svc).HandleGetRun)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var ops []models.Operation
		require.NoError(t, json.NewDecoder(w.Body).Decode(&ops))
		require.Len(t, ops, 1)
		assert.Equal(t, models.KindSplit, ops[0].Kind)
		assert.Equal(t, int64(3), ops[0].Rows)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/run-2", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandlePing(t *testing.T) {
	tests := []struct {
		name       string
		checkErr   error
		wantStatus int
	}{
		{name: "reachable", wantStatus: http.StatusOK},
		{name: "unreachable", checkErr: errors.New("connection refused"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRelocationService{
				checkConnectionFunc: func(context.Context) error { return tt.checkErr },
			}
			w := httptest.NewRecorder()
			newTestHandler(svc).HandlePing(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
