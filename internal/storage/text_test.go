package storage

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestNewTextReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he\uFFFDlo",
		},
		{
			name:     "decomposed accent composed",
			input:    []byte("Jose\u0301"),
			expected: "Jos\u00e9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewTextReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestNewTextReader_PartialBOMKept(t *testing.T) {
	input := []byte{0xEF, 0xBB, 'a', 'b', 'c'}
	result, err := io.ReadAll(NewTextReader(bytes.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(string(result), "abc") {
		t.Errorf("got %q, want suffix %q", string(result), "abc")
	}
}

func TestNewTextReader_LargeInput(t *testing.T) {
	input := strings.Repeat("Zoë,Ångström\n", 10000)
	result, err := io.ReadAll(NewTextReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != len(input) {
		t.Errorf("len = %d, want %d", len(result), len(input))
	}
}
