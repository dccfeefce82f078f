package core

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Column names touched by the derivation steps.
const (
	ColFirstName = "First_Name"
	ColLastName  = "Last_Name"
	ColFullName  = "Full_Name"
	ColEmail     = "Email"
	ColPhone     = "Phone"
)

// MaxPhoneLength is the width of the warehouse phone column.
const MaxPhoneLength = 20

// Normalize brings one cleaned raw table to its entity's canonical column
// set and types. The steps run in order:
//
//  1. Name merge (MergeName): Full_Name = First_Name + " " + Last_Name
//  2. Contact defaulting (Contacts): absent Email/Phone columns become Unknown
//  3. Contact validation: invalid values become Unknown, Phone is truncated
//  4. Coercion of every declared column to its type with its default
//  5. Projection (Project) to exactly the declared columns
//
// A table with no rows is a no-op and yields an empty table with the
// declared columns. Normalize never fails on bad data.
func Normalize(def EntityDefinition, raw RawTable) Table {
	out := Table{Name: def.Info.Key}
	if raw.Empty() {
		out.Columns = def.DeclaredColumns()
		return out
	}

	work := raw.Clone()
	if def.MergeName {
		mergeName(&work)
	}
	if def.Contacts {
		normalizeContacts(&work)
	}

	out.Columns = outputColumns(def, work)
	specs := make([]ColumnSpec, len(out.Columns))
	for i, col := range out.Columns {
		spec, ok := def.Spec(col.Name)
		if !ok {
			spec = ColumnSpec{Name: col.Name, Type: col.Type}
		}
		specs[i] = spec
	}

	out.Records = make([]Record, len(work.Rows))
	for i, row := range work.Rows {
		rec := make(Record, len(specs))
		for j, spec := range specs {
			rec[j] = castCell(spec, row.Get(spec.Name))
		}
		out.Records[i] = rec
	}
	return out
}

// mergeName replaces First_Name/Last_Name with their space-joined
// concatenation. A missing side contributes the empty string, so a row with
// neither yields a single space.
func mergeName(t *RawTable) {
	for _, row := range t.Rows {
		first := textOrEmpty(row.Get(ColFirstName))
		last := textOrEmpty(row.Get(ColLastName))
		row[ColFullName] = String(first + " " + last)
		delete(row, ColFirstName)
		delete(row, ColLastName)
	}

	cols := t.Columns[:0]
	for _, c := range t.Columns {
		if c != ColFirstName && c != ColLastName && c != ColFullName {
			cols = append(cols, c)
		}
	}
	t.Columns = append(cols, ColFullName)
}

// normalizeContacts defaults absent contact columns and substitutes Unknown
// for every value failing its validator. Phone is truncated after
// validation and is not re-validated.
func normalizeContacts(t *RawTable) {
	for _, col := range []string{ColEmail, ColPhone} {
		if !t.HasColumn(col) {
			t.Columns = append(t.Columns, col)
			for _, row := range t.Rows {
				row[col] = String(Unknown)
			}
		}
	}

	for _, row := range t.Rows {
		if email := row.Get(ColEmail); !IsValidEmail(email) {
			row[ColEmail] = String(Unknown)
		}

		phone := row.Get(ColPhone)
		if !IsValidPhone(phone) {
			phone = String(Unknown)
		}
		row[ColPhone] = String(truncateRunes(phone.Text, MaxPhoneLength))
	}
}

// outputColumns decides the canonical column list. Projected entities get
// exactly the declared list; others keep every working column (typing
// undeclared ones by inference) and gain any declared column they lack.
func outputColumns(def EntityDefinition, t RawTable) []Column {
	if def.Project {
		return def.DeclaredColumns()
	}

	cols := make([]Column, 0, len(t.Columns)+len(def.Columns))
	seen := make(map[string]bool, len(t.Columns))
	for _, name := range t.Columns {
		if seen[name] {
			continue
		}
		seen[name] = true
		if spec, ok := def.Spec(name); ok {
			cols = append(cols, Column{Name: name, Type: spec.Type})
			continue
		}
		cols = append(cols, Column{Name: name, Type: InferType(t, name)})
	}
	for _, spec := range def.Columns {
		if !seen[spec.Name] {
			cols = append(cols, Column{Name: spec.Name, Type: spec.Type})
		}
	}
	return cols
}

// InferType types an undeclared column from its present values: int64 when
// all are whole numbers, float64 when all are numeric, text otherwise.
func InferType(t RawTable, col string) FieldType {
	present := 0
	allInt := true
	for _, row := range t.Rows {
		v := row.Get(col)
		if v.Missing() {
			continue
		}
		present++
		if v.Kind == KindBool || !IsNumeric(v.Text) {
			return FieldText
		}
		if allInt && !IsInteger(v.Text) {
			allInt = false
		}
	}

	switch {
	case present == 0:
		return FieldText
	case allInt:
		return FieldInteger
	default:
		return FieldNumeric
	}
}

// castCell coerces one raw value to the spec's declared type.
func castCell(spec ColumnSpec, v Value) any {
	switch spec.Type {
	case FieldInteger:
		parse := ParseInt
		if spec.NonNegative {
			parse = NonNegative(ParseInt)
		}
		return Coerce(v, parse, int64(0))
	case FieldNumeric:
		parse := ParseFloat
		if spec.NonNegative {
			parse = NonNegative(ParseFloat)
		}
		return Coerce(v, parse, float64(0))
	case FieldDate:
		return Coerce(v, ParseDate, pgtype.Date{Valid: false})
	default:
		return Coerce(v, ParseText, Unknown)
	}
}

func textOrEmpty(v Value) string {
	if v.Missing() {
		return ""
	}
	return v.Text
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
