package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/InQaaaaGit/blob_relocator.git/internal/blobstore"
	"github.com/InQaaaaGit/blob_relocator.git/internal/config"
	"github.com/InQaaaaGit/blob_relocator.git/internal/handler"
	"github.com/InQaaaaGit/blob_relocator.git/internal/service"
	"github.com/InQaaaaGit/blob_relocator.git/internal/storage"
	"go.uber.org/zap"
)

// ExampleHandler_HandleCopyContainer демонстрирует запрос на копирование контейнера.
func ExampleHandler_HandleCopyContainer() {
	const (
		sourceCS = "AccountName=bronzeacct;AccountKey=a2V5LWJyb256ZQ=="
		targetCS = "AccountName=silveracct;AccountKey=a2V5LXNpbHZlcg=="
	)

	accounts := blobstore.NewMemoryAccounts()
	source, _ := accounts.Add(sourceCS)
	_, _ = accounts.Add(targetCS)
	source.Put("raw", "a.json", []byte("{}"))
	source.Put("raw", "b.json", []byte("{}"))

	logger := zap.NewNop()
	cfg := config.Default()
	svc := service.New(cfg, logger, accounts.Open, storage.NewMemoryJournal(logger))
	h := handler.NewHandler(svc, cfg, logger)

	body := fmt.Sprintf(`{"source_container":"raw","target_container":"mirror","source_cs":%q,"target_cs":%q}`, sourceCS, targetCS)
	req := httptest.NewRequest(http.MethodPost, "/api/copy_container", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.HandleCopyContainer(w, req)

	fmt.Println(w.Code)
	fmt.Println(w.Body.String())

	// Output:
	// 200
	// Copied 2 files from source: raw to target:mirror
}

// ExampleHandler_HandleSplitByDate демонстрирует ответ на запрос без обязательных полей.
func ExampleHandler_HandleSplitByDate() {
	logger := zap.NewNop()
	cfg := config.Default()
	svc := service.New(cfg, logger, blobstore.NewMemoryAccounts().Open, storage.NewMemoryJournal(logger))
	h := handler.NewHandler(svc, cfg, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/split_by_date", strings.NewReader(`{"file_name":"a/b.zip"}`))
	w := httptest.NewRecorder()
	h.HandleSplitByDate(w, req)

	fmt.Println(w.Code)
	fmt.Print(w.Body.String())

	// Output:
	// 400
	// Input failed validation
}
