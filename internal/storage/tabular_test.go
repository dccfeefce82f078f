package storage

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/ETL/internal/core"
)

func TestParseCSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFProduct_ID,Name,Price\n1,Widget,9.99\n2,Gadget,N/A\n3,,\n")

	got, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	wantCols := []string{"Product_ID", "Name", "Price"}
	if len(got.Columns) != len(wantCols) {
		t.Fatalf("Columns = %v, want %v", got.Columns, wantCols)
	}
	for i := range wantCols {
		if got.Columns[i] != wantCols[i] {
			t.Errorf("Columns[%d] = %q, want %q", i, got.Columns[i], wantCols[i])
		}
	}
	if got.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", got.Len())
	}

	tests := []struct {
		row  int
		col  string
		want core.Value
	}{
		{0, "Product_ID", core.String("1")},
		{0, "Name", core.String("Widget")},
		{0, "Price", core.String("9.99")},
		{1, "Price", core.Null()},
		{2, "Name", core.Null()},
		{2, "Price", core.Null()},
	}
	for _, tt := range tests {
		if v := got.Rows[tt.row].Get(tt.col); v != tt.want {
			t.Errorf("Rows[%d][%s] = %+v, want %+v", tt.row, tt.col, v, tt.want)
		}
	}
}

func TestParseCSV_NullTokens(t *testing.T) {
	for tok := range NullTokens {
		if tok == "" {
			continue
		}
		got, err := ParseCSV([]byte("A,B\n" + tok + ",x\n"))
		if err != nil {
			t.Fatalf("ParseCSV(%q) error = %v", tok, err)
		}
		if v := got.Rows[0].Get("A"); v.Kind != core.KindNull {
			t.Errorf("ParseCSV(%q) A = %+v, want null", tok, v)
		}
	}
}

func TestParseCSV_ShortRowPadded(t *testing.T) {
	got, err := ParseCSV([]byte("A,B,C\n1\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	row := got.Rows[0]
	if row.Get("A") != core.String("1") {
		t.Errorf("A = %+v, want 1", row.Get("A"))
	}
	for _, col := range []string{"B", "C"} {
		if v := row.Get(col); v.Kind != core.KindNull {
			t.Errorf("%s = %+v, want null", col, v)
		}
	}
}

func TestParseCSV_LongRowFails(t *testing.T) {
	_, err := ParseCSV([]byte("A,B\n1,2\n1,2,3\n"))
	if err == nil {
		t.Fatal("ParseCSV() expected error for record with extra fields")
	}
}

func TestParseCSV_NoHeader(t *testing.T) {
	_, err := ParseCSV(nil)
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("ParseCSV(nil) error = %v, want %v", err, ErrNoHeader)
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	got, err := ParseCSV([]byte("A,B\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if !got.Empty() {
		t.Errorf("Len() = %d, want 0", got.Len())
	}
	if len(got.Columns) != 2 {
		t.Errorf("Columns = %v, want [A B]", got.Columns)
	}
}

func TestParseCSV_BlankLinesSkipped(t *testing.T) {
	got, err := ParseCSV([]byte("A,B\n1,2\n,\n3,4\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("Len() = %d, want 2", got.Len())
	}
}

func TestUniqueHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{"distinct", []string{"A", "B"}, []string{"A", "B"}},
		{"repeated", []string{"A", "A", "A"}, []string{"A", "A.1", "A.2"}},
		{"suffix collision", []string{"A", "A.1", "A"}, []string{"A", "A.1", "A.2"}},
		{"blank", []string{"", "A", "  "}, []string{"Unnamed: 0", "A", "Unnamed: 2"}},
		{"reserved characters", []string{"Price,USD", "k=v"}, []string{"Price_USD", "k_v"}},
		{"sanitized repeat", []string{"a,b", "a=b"}, []string{"a_b", "a_b.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := uniqueHeaders(tt.header)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("uniqueHeaders(%v) = %v, want %v", tt.header, got, tt.want)
					break
				}
			}
		})
	}
}

func TestParseCSV_IndexColumn(t *testing.T) {
	data := []byte(",Product_ID,Price,Stock_Quantity\n0,1,5.0,3\n1,2,7.5,4\n")

	got, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	want := []string{"Unnamed: 0", "Product_ID", "Price", "Stock_Quantity"}
	for i, col := range want {
		if i >= len(got.Columns) || got.Columns[i] != col {
			t.Fatalf("Columns = %q, want %q", got.Columns, want)
		}
	}
	if v := got.Rows[1]["Unnamed: 0"]; v.Text != "1" {
		t.Errorf("index cell = %+v, want text 1", v)
	}
}
