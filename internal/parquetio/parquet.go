// Package parquetio serializes canonical tables to Parquet.
//
// Each table gets a row type built at run time with reflect.StructOf whose
// parquet tags mirror the table's columns, so the file schema follows the
// table schema exactly:
//
//	text    -> BYTE_ARRAY (UTF8), required
//	int64   -> INT64, required
//	float64 -> DOUBLE, required
//	date    -> INT32 (DATE), optional; the null date is written as null
package parquetio

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/JonMunkholm/ETL/internal/core"
)

// Extension is the file suffix of encoded tables.
const Extension = ".parquet"

// ErrInvalidColumnName is returned for names that cannot be expressed in a
// parquet tag.
var ErrInvalidColumnName = errors.New("invalid parquet column name")

const secondsPerDay = 24 * 60 * 60

var (
	stringType  = reflect.TypeOf("")
	int64Type   = reflect.TypeOf(int64(0))
	float64Type = reflect.TypeOf(float64(0))
	dateType    = reflect.TypeOf((*int32)(nil))
)

// RowType returns the struct type used to encode rows with the given columns.
func RowType(cols []core.Column) (reflect.Type, error) {
	fields := make([]reflect.StructField, len(cols))
	for i, col := range cols {
		if col.Name == "" || strings.ContainsAny(col.Name, ",=") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColumnName, col.Name)
		}

		var (
			typ reflect.Type
			tag string
		)
		switch col.Type {
		case core.FieldInteger:
			typ, tag = int64Type, "type=INT64"
		case core.FieldNumeric:
			typ, tag = float64Type, "type=DOUBLE"
		case core.FieldDate:
			typ, tag = dateType, "type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"
		default:
			typ, tag = stringType, "type=BYTE_ARRAY, convertedtype=UTF8"
		}

		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("C%d", i),
			Type: typ,
			Tag:  reflect.StructTag(fmt.Sprintf(`parquet:"name=%s, %s"`, col.Name, tag)),
		}
	}
	return reflect.StructOf(fields), nil
}

// Encode writes t to w as a single Parquet file with snappy compression.
func Encode(w io.Writer, t core.Table) error {
	rowType, err := RowType(t.Columns)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.Name, err)
	}

	pw, err := writer.NewParquetWriter(writerfile.NewWriterFile(w), reflect.New(rowType).Interface(), 1)
	if err != nil {
		return fmt.Errorf("encode %s: create writer: %w", t.Name, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, rec := range t.Records {
		row, err := buildRow(rowType, t.Columns, rec)
		if err != nil {
			return fmt.Errorf("encode %s: record %d: %w", t.Name, i, err)
		}
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("encode %s: record %d: %w", t.Name, i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("encode %s: finish: %w", t.Name, err)
	}
	return nil
}

// Decode reads a Parquet file produced by Encode back into records. The
// columns must be the ones the file was written with.
func Decode(data []byte, cols []core.Column) ([]core.Record, error) {
	rowType, err := RowType(cols)
	if err != nil {
		return nil, err
	}

	pf := buffer.NewBufferFileFromBytes(data)
	defer pf.Close()

	pr, err := reader.NewParquetReader(pf, reflect.New(rowType).Interface(), 1)
	if err != nil {
		return nil, fmt.Errorf("create reader: %w", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := reflect.New(reflect.SliceOf(rowType))
	rows.Elem().Set(reflect.MakeSlice(reflect.SliceOf(rowType), n, n))
	if n > 0 {
		if err := pr.Read(rows.Interface()); err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
	}

	records := make([]core.Record, n)
	for i := 0; i < n; i++ {
		records[i] = recordOf(rows.Elem().Index(i), cols)
	}
	return records, nil
}

func buildRow(rowType reflect.Type, cols []core.Column, rec core.Record) (any, error) {
	if len(rec) != len(cols) {
		return nil, fmt.Errorf("has %d cells, want %d", len(rec), len(cols))
	}

	row := reflect.New(rowType).Elem()
	for i, col := range cols {
		field := row.Field(i)
		switch col.Type {
		case core.FieldInteger:
			v, ok := rec[i].(int64)
			if !ok {
				return nil, cellError(col, rec[i])
			}
			field.SetInt(v)
		case core.FieldNumeric:
			v, ok := rec[i].(float64)
			if !ok {
				return nil, cellError(col, rec[i])
			}
			field.SetFloat(v)
		case core.FieldDate:
			v, ok := rec[i].(pgtype.Date)
			if !ok {
				return nil, cellError(col, rec[i])
			}
			if v.Valid {
				days := int32(v.Time.Unix() / secondsPerDay)
				field.Set(reflect.ValueOf(&days))
			}
		default:
			v, ok := rec[i].(string)
			if !ok {
				return nil, cellError(col, rec[i])
			}
			field.SetString(v)
		}
	}
	return row.Interface(), nil
}

func recordOf(row reflect.Value, cols []core.Column) core.Record {
	rec := make(core.Record, len(cols))
	for i, col := range cols {
		field := row.Field(i)
		switch col.Type {
		case core.FieldInteger:
			rec[i] = field.Int()
		case core.FieldNumeric:
			rec[i] = field.Float()
		case core.FieldDate:
			if field.IsNil() {
				rec[i] = pgtype.Date{}
				continue
			}
			days := field.Elem().Int()
			rec[i] = pgtype.Date{Time: time.Unix(days*secondsPerDay, 0).UTC(), Valid: true}
		default:
			rec[i] = field.String()
		}
	}
	return rec
}

func cellError(col core.Column, v any) error {
	return fmt.Errorf("column %s: cell %T does not match type %s", col.Name, v, col.Type)
}
