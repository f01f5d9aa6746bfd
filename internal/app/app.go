// Package app собирает приложение: сервис переноса данных, обработчики и маршруты.
package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/InQaaaaGit/blob_relocator.git/internal/config"
	"github.com/InQaaaaGit/blob_relocator.git/internal/handler"
	"github.com/InQaaaaGit/blob_relocator.git/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	readTimeout = 10 * time.Second
	// writeTimeout покрывает листинг большого контейнера и разбиение файла
	writeTimeout = 5 * time.Minute
	idleTimeout  = 120 * time.Second
)

// App представляет приложение сервиса переноса данных
type App struct {
	config  *config.Config   // Конфигурация приложения
	router  *chi.Mux         // HTTP роутер для обработки запросов
	logger  *zap.Logger      // Логгер для записи событий приложения
	handler *handler.Handler // Обработчики HTTP запросов
	service *service.Service // Сервис переноса данных
}

// NewApp создает приложение и регистрирует маршруты
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	svc, err := service.NewRelocationService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating service: %w", err)
	}
	return newApp(cfg, logger, svc), nil
}

func newApp(cfg *config.Config, logger *zap.Logger, svc *service.Service) *App {
	a := &App{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		handler: handler.NewHandler(svc, cfg, logger),
		service: svc,
	}
	a.setupRoutes()
	return a
}

// setupRoutes настраивает HTTP маршруты и middleware
func (a *App) setupRoutes() {
	a.router.Use(a.handler.WithLogging)
	a.router.Use(a.handler.WithGzip)

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/copy_container", a.handler.HandleCopyContainer)
		r.Post("/copy_container/status", a.handler.HandleCopyStatus)
		r.Post("/split_by_date", a.handler.HandleSplitByDate)
		r.Get("/runs/{runID}", a.handler.HandleGetRun)
	})
	a.router.Get("/ping", a.handler.HandlePing)
}

// Handler возвращает корневой HTTP обработчик
func (a *App) Handler() http.Handler {
	return a.router
}

// GetServer создает HTTP сервер с настроенными таймаутами
func (a *App) GetServer() *http.Server {
	return &http.Server{
		Addr:         a.config.ServerAddress,
		Handler:      a.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Close освобождает ресурсы сервиса
func (a *App) Close() error {
	return a.service.Close()
}
