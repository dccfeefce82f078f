package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ETL/internal/core"
)

// ErrNoHeader is returned for delimited input without a header row.
var ErrNoHeader = errors.New("no header row")

// NullTokens are cell values read as missing, matching what common
// dataframe tooling treats as NA on import.
var NullTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// ParseCSV parses a delimited file with a header row into a raw table.
//
// Every present cell becomes a text Value; empty cells and NullTokens become
// null. Header names are kept as written except that blank ones become
// "Unnamed: <index>", the characters ',' and '=' (which Parquet column names
// cannot hold) become '_', and repeats get a ".N" suffix. Short records are padded with nulls. A record with more fields
// than the header is a structural error, as is a missing header.
func ParseCSV(data []byte) (core.RawTable, error) {
	r := csv.NewReader(NewTextReader(bytes.NewReader(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return core.RawTable{}, ErrNoHeader
	}
	if err != nil {
		return core.RawTable{}, fmt.Errorf("read header: %w", err)
	}

	cols := uniqueHeaders(header)
	t := core.RawTable{Columns: cols}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.RawTable{}, fmt.Errorf("read record: %w", err)
		}
		if isEmptyRecord(record) {
			continue
		}
		if len(record) > len(cols) {
			line, _ := r.FieldPos(0)
			return core.RawTable{}, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(cols), len(record))
		}

		row := make(core.Row, len(cols))
		for i, col := range cols {
			if i >= len(record) || NullTokens[record[i]] {
				row[col] = core.Null()
				continue
			}
			row[col] = core.String(record[i])
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// headerReplacer maps characters Parquet column names cannot contain.
var headerReplacer = strings.NewReplacer(",", "_", "=", "_")

// headerName is the column name used for header cell i.
func headerName(i int, h string) string {
	if strings.TrimSpace(h) == "" {
		return "Unnamed: " + strconv.Itoa(i)
	}
	return headerReplacer.Replace(h)
}

// uniqueHeaders names every header cell, suffixing repeated names with
// ".1", ".2", ...
func uniqueHeaders(header []string) []string {
	cols := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))
	for i, raw := range header {
		h := headerName(i, raw)
		name := h
		for used[name] {
			counts[h]++
			name = h + "." + strconv.Itoa(counts[h])
		}
		used[name] = true
		cols[i] = name
	}
	return cols
}

func isEmptyRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
