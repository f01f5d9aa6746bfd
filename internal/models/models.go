// Package models содержит структуры запросов, ответов и записей журнала операций.
package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidInput возвращается, когда в теле запроса отсутствует обязательное поле
var ErrInvalidInput = errors.New("invalid input payload")

// CopyRequest представляет тело запроса на копирование контейнера
type CopyRequest struct {
	SourceContainer string `json:"source_container"`
	TargetContainer string `json:"target_container"`
	SourceCS        string `json:"source_cs"`
	TargetCS        string `json:"target_cs"`
}

// Validate проверяет, что все поля запроса заполнены
func (r CopyRequest) Validate() error {
	return requireFields(map[string]string{
		"source_container": r.SourceContainer,
		"target_container": r.TargetContainer,
		"source_cs":        r.SourceCS,
		"target_cs":        r.TargetCS,
	})
}

// SplitRequest представляет тело запроса на разбиение файла по датам
type SplitRequest struct {
	FileName        string `json:"file_name"`
	SourceContainer string `json:"source_container"`
	TargetContainer string `json:"target_container"`
	SourceCS        string `json:"source_cs"`
	TargetCS        string `json:"target_cs"`
}

// Validate проверяет, что все поля запроса заполнены
func (r SplitRequest) Validate() error {
	return requireFields(map[string]string{
		"file_name":        r.FileName,
		"source_container": r.SourceContainer,
		"target_container": r.TargetContainer,
		"source_cs":        r.SourceCS,
		"target_cs":        r.TargetCS,
	})
}

// CopyStatusRequest представляет запрос состояния копирования для ранее выполненного запуска
type CopyStatusRequest struct {
	RunID           string `json:"run_id"`
	TargetContainer string `json:"target_container"`
	TargetCS        string `json:"target_cs"`
}

// Validate проверяет, что все поля запроса заполнены
func (r CopyStatusRequest) Validate() error {
	return requireFields(map[string]string{
		"run_id":           r.RunID,
		"target_container": r.TargetContainer,
		"target_cs":        r.TargetCS,
	})
}

// requireFields возвращает ErrInvalidInput со списком пустых полей
func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
}
