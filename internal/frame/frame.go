// Package frame содержит табличное представление строк NDJSON файла,
// группировку по дате и кодирование групп в parquet.
package frame

import (
	"errors"
	"fmt"
	"time"
)

// ErrDecode возвращается, когда содержимое источника не удалось разобрать
var ErrDecode = errors.New("decode source file")

// ErrMissingDateColumn возвращается, когда у строки нет значения колонки даты
var ErrMissingDateColumn = fmt.Errorf("%w: missing date column", ErrDecode)

// Kind определяет тип значений колонки
type Kind int

const (
	// KindNull - колонка, в которой нет ни одного значения
	KindNull Kind = iota
	// KindBool - логические значения
	KindBool
	// KindInt - целые числа
	KindInt
	// KindFloat - числа с плавающей точкой
	KindFloat
	// KindString - строки и все смешанные колонки
	KindString
	// KindTime - метки времени
	KindTime
)

// String возвращает имя типа колонки
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindString:
		return "string"
	case KindTime:
		return "timestamp"
	default:
		return "null"
	}
}

// Column описывает колонку фрейма
type Column struct {
	Name string
	Kind Kind
}

// Frame хранит строки в порядке чтения. Значения строки выровнены по Columns и
// имеют тип, соответствующий Kind: bool, int64, float64, string, time.Time или nil.
type Frame struct {
	Columns []Column
	Rows    [][]any
}

// Group - подмножество строк с одинаковым значением даты
type Group struct {
	Date time.Time
	Rows []int
}

// Len возвращает количество строк
func (f *Frame) Len() int {
	return len(f.Rows)
}

// ColumnIndex возвращает позицию колонки или -1
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Take возвращает новый фрейм с выбранными строками и той же схемой
func (f *Frame) Take(rows []int) *Frame {
	out := &Frame{
		Columns: f.Columns,
		Rows:    make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		out.Rows = append(out.Rows, f.Rows[r])
	}
	return out
}

// GroupByDate делит строки по различным значениям колонки column.
// Группы идут в порядке первого появления значения, строки внутри группы - в порядке чтения.
func (f *Frame) GroupByDate(column string) ([]Group, error) {
	idx := f.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("%w %q", ErrMissingDateColumn, column)
	}
	if f.Columns[idx].Kind != KindTime {
		return nil, fmt.Errorf("%w: column %q holds %s values, not dates", ErrDecode, column, f.Columns[idx].Kind)
	}

	positions := make(map[int64]int)
	var groups []Group
	for r, row := range f.Rows {
		ts, ok := row[idx].(time.Time)
		if !ok {
			return nil, fmt.Errorf("%w %q in row %d", ErrMissingDateColumn, column, r+1)
		}
		key := ts.UnixNano()
		pos, seen := positions[key]
		if !seen {
			pos = len(groups)
			positions[key] = pos
			groups = append(groups, Group{Date: ts})
		}
		groups[pos].Rows = append(groups[pos].Rows, r)
	}
	return groups, nil
}
