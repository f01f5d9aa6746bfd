package frame

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// minEpochSeconds отсекает малые числа, которые не считаются метками времени (один год в секундах)
const minEpochSeconds = 31536000

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"20060102",
}

// epochUnits - множители к наносекундам и верхняя граница значения для каждой единицы
var epochUnits = []struct {
	nanos float64
	limit float64
}{
	{nanos: 1e9, limit: math.MaxInt64 / 1e9},
	{nanos: 1e6, limit: math.MaxInt64 / 1e6},
	{nanos: 1e3, limit: math.MaxInt64 / 1e3},
	{nanos: 1, limit: math.MaxInt64},
}

// isDateLikeColumn повторяет правило автоматического распознавания колонок с датами
func isDateLikeColumn(name string) bool {
	lower := strings.ToLower(name)
	switch lower {
	case "date", "datetime", "modified":
		return true
	}
	return strings.HasSuffix(lower, "_at") ||
		strings.HasSuffix(lower, "_time") ||
		strings.HasPrefix(lower, "timestamp")
}

// parseTime разбирает строку даты или число секунд/миллисекунд/микросекунд/наносекунд от эпохи.
// Единица выбирается первой, при которой значение помещается в диапазон наносекундных меток.
// Строки вне timeLayouts разбираются dateparse, форма 06/01/2022 читается как месяц/день/год.
// Строки из одних цифр эпохой не считаются.
func parseTime(v any) (time.Time, bool) {
	switch value := v.(type) {
	case string:
		s := strings.TrimSpace(value)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if s == "" || isDigits(s) {
			return time.Time{}, false
		}
		t, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return epochToTime(i)
		}
		f, err := value.Float64()
		if err != nil || f <= minEpochSeconds {
			return time.Time{}, false
		}
		for _, unit := range epochUnits {
			if f < unit.limit {
				return time.Unix(0, int64(f*unit.nanos)).UTC(), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func epochToTime(v int64) (time.Time, bool) {
	switch {
	case v <= minEpochSeconds:
		return time.Time{}, false
	case v < math.MaxInt64/1_000_000_000:
		return time.Unix(v, 0).UTC(), true
	case v < math.MaxInt64/1_000_000:
		return time.UnixMilli(v).UTC(), true
	case v < math.MaxInt64/1_000:
		return time.UnixMicro(v).UTC(), true
	default:
		return time.Unix(0, v).UTC(), true
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
