package frame

import (
	"bytes"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
)

// ParquetContentType - тип содержимого записываемых файлов
const ParquetContentType = "application/vnd.apache.parquet"

// Schema строит arrow схему фрейма, все колонки допускают null
func (f *Frame) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(f.Columns))
	for i, c := range f.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Kind), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// Record собирает arrow запись из строк фрейма. Запись нужно освободить через Release.
func (f *Frame) Record(mem memory.Allocator) (arrow.Record, error) {
	schema := f.Schema()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for r, row := range f.Rows {
		for c, v := range row {
			if err := appendValue(b.Field(c), f.Columns[c].Kind, v); err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", r+1, f.Columns[c].Name, err)
			}
		}
	}
	return b.NewRecord(), nil
}

// EncodeParquet кодирует фрейм в parquet файл со сжатием snappy.
// Формат 2.6 нужен для наносекундных меток времени.
func (f *Frame) EncodeParquet() ([]byte, error) {
	mem := memory.NewGoAllocator()

	rec, err := f.Record(mem)
	if err != nil {
		return nil, fmt.Errorf("build record: %w", err)
	}
	defer rec.Release()

	var buf bytes.Buffer
	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithAllocator(mem),
	)
	w, err := pqarrow.NewFileWriter(rec.Schema(), &buf, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("write parquet: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func arrowType(kind Kind) arrow.DataType {
	switch kind {
	case KindBool:
		return arrow.FixedWidthTypes.Boolean
	case KindInt:
		return arrow.PrimitiveTypes.Int64
	case KindFloat:
		return arrow.PrimitiveTypes.Float64
	case KindTime:
		// та же точность, что у ключа группировки в GroupByDate
		return &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}
	default:
		// пустые колонки пишутся как строковые, целиком из null
		return arrow.BinaryTypes.String
	}
}

func appendValue(b array.Builder, kind Kind, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch kind {
	case KindBool:
		b.(*array.BooleanBuilder).Append(v.(bool))
	case KindInt:
		b.(*array.Int64Builder).Append(v.(int64))
	case KindFloat:
		b.(*array.Float64Builder).Append(v.(float64))
	case KindTime:
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(v.(time.Time).UnixNano()))
	case KindString, KindNull:
		b.(*array.StringBuilder).Append(stringify(v))
	default:
		return fmt.Errorf("unsupported column kind %s", kind)
	}
	return nil
}
