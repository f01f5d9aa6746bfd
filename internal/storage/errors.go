package storage

import "errors"

// ErrRunNotFound возвращается, когда в журнале нет записей для запуска
var ErrRunNotFound = errors.New("run not found")
