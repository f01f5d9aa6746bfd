// Команда relocator запускает HTTP сервис переноса данных между контейнерами Azure Blob Storage.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/InQaaaaGit/blob_relocator.git/internal/app"
	"github.com/InQaaaaGit/blob_relocator.git/internal/buildinfo"
	"github.com/InQaaaaGit/blob_relocator.git/internal/server"
	"go.uber.org/zap"
)

// Заполняются при сборке: go build -ldflags "-X main.buildVersion=v1.0.0 ..."
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	info := buildinfo.NewInfo(buildVersion, buildDate, buildCommit)
	info.Print(os.Stdout)

	logger, cleanup := server.InitLogger()
	defer cleanup()
	logger.Info("Starting relocator", info.Fields()...)

	cfg := server.InitConfig(logger)

	application, err := app.NewApp(cfg, logger)
	if err != nil {
		logger.Fatal("Error creating application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Error closing application", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := server.NewHTTPServer(application.GetServer(), cfg, logger).Run(ctx); err != nil {
		logger.Error("Server error", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}
