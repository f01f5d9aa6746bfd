// Package server запускает HTTP или HTTPS сервер и останавливает его по отмене контекста.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/InQaaaaGit/blob_relocator.git/internal/config"
	"go.uber.org/zap"
)

// shutdownTimeout - время на завершение запросов при остановке
const shutdownTimeout = 30 * time.Second

// HTTPServer представляет HTTP сервер с общей логикой запуска
type HTTPServer struct {
	server *http.Server
	config *config.Config
	logger *zap.Logger
}

// NewHTTPServer создает новый HTTP сервер
func NewHTTPServer(server *http.Server, cfg *config.Config, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{
		server: server,
		config: cfg,
		logger: logger,
	}
}

// Run слушает адрес из конфигурации до отмены ctx, после чего корректно останавливает сервер
func (s *HTTPServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve обслуживает соединения listener до отмены ctx
func (s *HTTPServer) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.serve(listener)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// serve запускает HTTP или HTTPS в зависимости от конфигурации
func (s *HTTPServer) serve(listener net.Listener) error {
	var err error
	if s.config.IsHTTPSEnabled() {
		s.logger.Info("Starting HTTPS server",
			zap.String("address", listener.Addr().String()),
			zap.String("cert", s.config.TLSCertFile),
			zap.String("key", s.config.TLSKeyFile))
		err = s.server.ServeTLS(listener, s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		s.logger.Info("Starting HTTP server", zap.String("address", listener.Addr().String()))
		err = s.server.Serve(listener)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// InitLogger инициализирует production логгер с функцией синхронизации
func InitLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			log.Printf("Error syncing logger: %v", err)
		}
	}

	return logger, cleanup
}

// InitConfig загружает конфигурацию и завершает процесс при ошибке
func InitConfig(logger *zap.Logger) *config.Config {
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("Error loading config", zap.Error(err))
	}
	logger.Info("Config loaded",
		zap.String("address", cfg.ServerAddress),
		zap.Bool("https", cfg.IsHTTPSEnabled()),
		zap.Int("copy_workers", cfg.CopyWorkers),
		zap.Int("list_page_size", cfg.ListPageSize),
		zap.Duration("sas_expiry", cfg.SASExpiry),
		zap.Int64("max_source_bytes", cfg.MaxSourceBytes))
	return cfg
}
