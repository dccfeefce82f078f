package core

import "strings"

// Clean applies the generic pre-normalization pass to a raw table:
// missing values in text columns become Unknown, then exact duplicate
// rows are dropped keeping the first occurrence.
//
// Tables without rows, or without any text column, are returned unchanged.
// Clean is idempotent.
func Clean(t RawTable) RawTable {
	if t.Empty() {
		return t
	}

	textCols := TextColumns(t)
	if len(textCols) == 0 {
		return t
	}

	out := t.Clone()
	for _, row := range out.Rows {
		for _, col := range textCols {
			if row.Get(col).Missing() {
				row[col] = String(Unknown)
			}
		}
	}

	out.Rows = dedupeRows(out.Columns, out.Rows)
	return out
}

// TextColumns returns the columns holding free-form text: those with at
// least one present string value that is not numeric.
func TextColumns(t RawTable) []string {
	var cols []string
	for _, col := range t.Columns {
		for _, row := range t.Rows {
			v := row.Get(col)
			if v.IsString() && !IsNumeric(v.Text) {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}

// dedupeRows removes rows identical across all columns, preserving the
// order of first occurrences.
func dedupeRows(cols []string, rows []Row) []Row {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		key := rowKey(cols, row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

func rowKey(cols []string, row Row) string {
	var b strings.Builder
	for _, col := range cols {
		v := row.Get(col)
		// Absent and null compare equal, as both are "no value".
		if v.Missing() {
			b.WriteByte(0)
		} else {
			b.WriteByte(byte('0' + v.Kind))
			b.WriteString(v.Text)
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}
