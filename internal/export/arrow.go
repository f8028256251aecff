package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/conjoint/internal/models"
)

// DesignSchema returns the Arrow schema of a design export: int64 columns
// in CSV column order.
func DesignSchema(t *models.DesignTable) *arrow.Schema {
	return int64Schema(DesignColumns(t), false)
}

// ResponseSchema returns the Arrow schema of a response export: a utf8
// respid column followed by int64 columns.
func ResponseSchema(t *models.ResponseTable) *arrow.Schema {
	return int64Schema(ResponseColumns(t), true)
}

func int64Schema(cols []string, leadingString bool) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, name := range cols {
		fields[i] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64}
	}
	if leadingString {
		fields[0].Type = arrow.BinaryTypes.String
	}
	return arrow.NewSchema(fields, nil)
}

// WriteDesignArrow writes the design as a single-record Arrow IPC stream.
func WriteDesignArrow(w io.Writer, t *models.DesignTable) error {
	schema := DesignSchema(t)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for _, row := range t.Rows() {
		b.Field(0).(*array.Int64Builder).Append(int64(row.Version))
		b.Field(1).(*array.Int64Builder).Append(int64(row.Task))
		b.Field(2).(*array.Int64Builder).Append(int64(row.Concept))
		for i, l := range row.Levels {
			b.Field(3 + i).(*array.Int64Builder).Append(int64(l))
		}
	}

	return writeRecord(w, schema, b)
}

// WriteResponsesArrow writes the responses as a single-record Arrow IPC stream.
func WriteResponsesArrow(w io.Writer, t *models.ResponseTable) error {
	schema := ResponseSchema(t)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for _, row := range t.Rows() {
		b.Field(0).(*array.StringBuilder).Append(row.RespondentID)
		b.Field(1).(*array.Int64Builder).Append(int64(row.Version))
		for i, c := range row.Choices {
			b.Field(2 + i).(*array.Int64Builder).Append(int64(c))
		}
	}

	return writeRecord(w, schema, b)
}

func writeRecord(w io.Writer, schema *arrow.Schema, b *array.RecordBuilder) error {
	rec := b.NewRecord()
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(schema))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := iw.Close(); err != nil {
		return fmt.Errorf("failed to close arrow stream: %w", err)
	}
	return nil
}
