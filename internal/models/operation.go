package models

import "time"

// OperationKind определяет тип записи в журнале
type OperationKind string

const (
	// KindCopy - запущенное серверное копирование блоба
	KindCopy OperationKind = "copy"
	// KindSplit - записанный parquet файл с группой строк
	KindSplit OperationKind = "split"
)

// Operation представляет одну запись журнала операций
type Operation struct {
	RunID           string        `json:"run_id"`
	Kind            OperationKind `json:"kind"`
	SourceContainer string        `json:"source_container"`
	SourceBlob      string        `json:"source_blob"`
	TargetContainer string        `json:"target_container"`
	TargetBlob      string        `json:"target_blob"`
	CopyID          string        `json:"copy_id,omitempty"`
	Status          string        `json:"status,omitempty"`
	Size            int64         `json:"size,omitempty"`
	Rows            int64         `json:"rows,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// CopyResult возвращается сервисом после запуска копирования контейнера
type CopyResult struct {
	RunID  string
	Copied int
}

// OutputFile описывает один записанный файл разбиения
type OutputFile struct {
	Path string `json:"path"`
	Day  int    `json:"day"`
	Rows int    `json:"rows"`
}

// SplitResult возвращается сервисом после разбиения файла
type SplitResult struct {
	RunID string
	Files []OutputFile
}

// CopyState описывает текущее состояние серверного копирования одного блоба
type CopyState struct {
	Blob        string `json:"blob"`
	CopyID      string `json:"copy_id,omitempty"`
	Status      string `json:"status"`
	Progress    string `json:"progress,omitempty"`
	Description string `json:"description,omitempty"`
}
