package frame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zip"
)

const zipMIME = "application/zip"

// nestedJSON хранит вложенный объект или массив в компактной JSON записи
type nestedJSON string

type field struct {
	name  string
	value any
}

// DecodeZippedNDJSON распаковывает zip архив с единственным файлом и читает его как NDJSON.
// Содержимое без сигнатуры zip отклоняется до открытия архива с указанием определенного типа,
// ошибки разбора архива оборачивают zip.ErrFormat.
func DecodeZippedNDJSON(data []byte) (*Frame, error) {
	if detected := mimetype.Detect(data); !isZip(detected) {
		return nil, fmt.Errorf("%w: content is %s, not a zip archive", ErrDecode, detected.String())
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var files []*zip.File
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			files = append(files, f)
		}
	}
	switch len(files) {
	case 0:
		return nil, fmt.Errorf("%w: zero files found in zip archive", ErrDecode)
	case 1:
	default:
		return nil, fmt.Errorf("%w: multiple files found in zip archive, only one file per archive is supported", ErrDecode)
	}

	rc, err := files[0].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDecode, files[0].Name, err)
	}
	defer rc.Close()

	return DecodeNDJSON(rc)
}

// DecodeNDJSON читает поток JSON объектов, по одному на строку.
// Порядок колонок соответствует порядку первого появления ключей.
func DecodeNDJSON(r io.Reader) (*Frame, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	b := newBuilder()
	for record := 1; ; record++ {
		fields, err := readRecord(dec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrDecode, record, err)
		}
		b.add(fields)
	}
	return b.build(), nil
}

// isZip учитывает форматы поверх zip (docx, jar и т.п.)
func isZip(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(zipMIME) {
			return true
		}
	}
	return false
}

// readRecord читает один объект верхнего уровня, сохраняя порядок ключей
func readRecord(dec *json.Decoder) ([]field, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, unexpectedEOF(err)
		}
		value, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields = append(fields, field{name: name, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, unexpectedEOF(err)
	}
	return fields, nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// decodeValue превращает значение в nil, bool, json.Number, string или nestedJSON
func decodeValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty value")
	}

	switch trimmed[0] {
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return nestedJSON(buf.String()), nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return s, nil
	case 'n':
		return nil, nil
	case 't', 'f':
		return strconv.ParseBool(string(trimmed))
	default:
		return json.Number(trimmed), nil
	}
}

// builder накапливает строки и определяет типы колонок после чтения
type builder struct {
	names []string
	index map[string]int
	rows  [][]any
}

func newBuilder() *builder {
	return &builder{index: make(map[string]int)}
}

func (b *builder) add(fields []field) {
	row := make([]any, len(b.names))
	for _, f := range fields {
		pos, ok := b.index[f.name]
		if !ok {
			pos = len(b.names)
			b.index[f.name] = pos
			b.names = append(b.names, f.name)
		}
		for len(row) <= pos {
			row = append(row, nil)
		}
		row[pos] = f.value
	}
	b.rows = append(b.rows, row)
}

func (b *builder) build() *Frame {
	f := &Frame{
		Columns: make([]Column, len(b.names)),
		Rows:    b.rows,
	}
	for i := range f.Rows {
		for len(f.Rows[i]) < len(b.names) {
			f.Rows[i] = append(f.Rows[i], nil)
		}
	}

	for c, name := range b.names {
		kind := b.inferKind(c, name)
		f.Columns[c] = Column{Name: name, Kind: kind}
		for _, row := range f.Rows {
			row[c] = convert(row[c], kind)
		}
	}
	return f
}

// inferKind выбирает тип колонки по всем ее непустым значениям
func (b *builder) inferKind(c int, name string) Kind {
	var bools, ints, floats, texts, total int
	dateCandidate := isDateLikeColumn(name)

	for _, row := range b.rows {
		v := row[c]
		if v == nil {
			continue
		}
		total++
		if dateCandidate {
			if _, ok := parseTime(v); !ok {
				dateCandidate = false
			}
		}
		switch value := v.(type) {
		case bool:
			bools++
		case json.Number:
			if _, err := value.Int64(); err == nil {
				ints++
			} else {
				floats++
			}
		default:
			texts++
		}
	}

	switch {
	case total == 0:
		return KindNull
	case dateCandidate:
		return KindTime
	case bools == total:
		return KindBool
	case ints == total:
		return KindInt
	case ints+floats == total:
		return KindFloat
	default:
		return KindString
	}
}

func convert(v any, kind Kind) any {
	if v == nil {
		return nil
	}

	switch kind {
	case KindTime:
		t, _ := parseTime(v)
		return t
	case KindBool:
		return v.(bool)
	case KindInt:
		i, _ := v.(json.Number).Int64()
		return i
	case KindFloat:
		f, _ := v.(json.Number).Float64()
		return f
	default:
		return stringify(v)
	}
}

func stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case nestedJSON:
		return string(value)
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}
