// Package handler содержит HTTP обработчики сервиса переноса данных.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/InQaaaaGit/blob_relocator.git/internal/config"
	"github.com/InQaaaaGit/blob_relocator.git/internal/middleware"
	"github.com/InQaaaaGit/blob_relocator.git/internal/models"
	"github.com/InQaaaaGit/blob_relocator.git/internal/service"
	"github.com/InQaaaaGit/blob_relocator.git/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	contentTypePlain = "text/plain; charset=utf-8"
	contentTypeJSON  = "application/json"

	copyInvalidMessage  = "Invalid inputs"
	splitInvalidMessage = "Input failed validation"
	splitDoneMessage    = "split function executed succesfuly"
	runNotFoundMessage  = "Run not found"
	internalMessage     = "Internal server error"

	// maxRequestBody ограничивает размер JSON тела запроса
	maxRequestBody = 1 << 20
)

// Handler обрабатывает HTTP запросы сервиса
type Handler struct {
	service service.RelocationService
	cfg     *config.Config
	logger  *zap.Logger
}

// NewHandler создает обработчики поверх сервиса переноса данных
func NewHandler(service service.RelocationService, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// HandleCopyContainer обрабатывает POST /api/copy_container
func (h *Handler) HandleCopyContainer(w http.ResponseWriter, r *http.Request) {
	var req models.CopyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.logger.Info("Invalid copy request", zap.Error(err))
		http.Error(w, copyInvalidMessage, http.StatusBadRequest)
		return
	}

	result, err := h.service.CopyContainer(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			h.logger.Info("Invalid copy request", zap.Error(err))
			http.Error(w, copyInvalidMessage, http.StatusBadRequest)
			return
		}
		h.logger.Error("Error copying container",
			zap.String("source_container", req.SourceContainer),
			zap.String("target_container", req.TargetContainer),
			zap.Error(err))
		http.Error(w, internalMessage, http.StatusInternalServerError)
		return
	}

	message := fmt.Sprintf("Copied %d files from source: %s to target:%s", result.Copied, req.SourceContainer, req.TargetContainer)
	h.writeText(w, result.RunID, message)
}

// HandleSplitByDate обрабатывает POST /api/split_by_date
func (h *Handler) HandleSplitByDate(w http.ResponseWriter, r *http.Request) {
	var req models.SplitRequest
	if err := h.decode(w, r, &req); err != nil {
		h.logger.Info("Invalid split request", zap.Error(err))
		http.Error(w, splitInvalidMessage, http.StatusBadRequest)
		return
	}

	result, err := h.service.SplitByDate(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			h.logger.Info("Invalid split request", zap.Error(err))
			http.Error(w, splitInvalidMessage, http.StatusBadRequest)
			return
		}
		h.logger.Error("Error splitting file by date",
			zap.String("file_name", req.FileName),
			zap.String("source_container", req.SourceContainer),
			zap.Error(err))
		http.Error(w, internalMessage, http.StatusInternalServerError)
		return
	}

	h.writeText(w, result.RunID, splitDoneMessage)
}

// HandleCopyStatus обрабатывает POST /api/copy_container/status
func (h *Handler) HandleCopyStatus(w http.ResponseWriter, r *http.Request) {
	var req models.CopyStatusRequest
	if err := h.decode(w, r, &req); err != nil {
		http.Error(w, copyInvalidMessage, http.StatusBadRequest)
		return
	}

	states, err := h.service.CopyStatus(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			http.Error(w, copyInvalidMessage, http.StatusBadRequest)
		case errors.Is(err, storage.ErrRunNotFound):
			http.Error(w, runNotFoundMessage, http.StatusNotFound)
		default:
			h.logger.Error("Error reading copy status", zap.String("run_id", req.RunID), zap.Error(err))
			http.Error(w, internalMessage, http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, states)
}

// HandleGetRun обрабатывает GET /api/runs/{runID}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if runID == "" {
		http.Error(w, "Empty run ID", http.StatusBadRequest)
		return
	}

	ops, err := h.service.Run(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			http.Error(w, runNotFoundMessage, http.StatusNotFound)
			return
		}
		h.logger.Error("Error reading run", zap.String("run_id", runID), zap.Error(err))
		http.Error(w, internalMessage, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, ops)
}

// WithLogging добавляет логирование запросов
func (h *Handler) WithLogging(next http.Handler) http.Handler {
	return middleware.LoggerMiddleware(h.logger)(next)
}

// WithGzip добавляет поддержку gzip сжатия
func (h *Handler) WithGzip(next http.Handler) http.Handler {
	return middleware.GzipMiddleware(next)
}

// decode читает JSON тело запроса. Неразборчивое тело считается некорректным вводом.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	defer func() {
		if err := r.Body.Close(); err != nil {
			h.logger.Error("Error closing request body", zap.Error(err))
		}
	}()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) writeText(w http.ResponseWriter, runID, message string) {
	w.Header().Set("Content-Type", contentTypePlain)
	w.Header().Set(middleware.RunIDHeader, runID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(message)); err != nil {
		h.logger.Error("Error writing response", zap.Error(err))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error writing JSON response", zap.Error(err))
	}
}
