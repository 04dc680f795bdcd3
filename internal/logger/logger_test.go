package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, json := range []bool{true, false} {
		for _, debug := range []bool{true, false} {
			if _, err := New(json, debug); err != nil {
				t.Fatalf("New(%v, %v): %v", json, debug, err)
			}
		}
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"whitespace trimmed", "  hello  ", 10, "hello"},
		{"zero limit", "hello", 0, ""},
		{"negative limit", "hello", -1, ""},
		{"multibyte runes", "héllo wörld", 5, "héllo..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateForLog(tc.input, tc.limit); got != tc.expect {
				t.Fatalf("TruncateForLog(%q, %d) = %q, want %q", tc.input, tc.limit, got, tc.expect)
			}
		})
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	t.Parallel()

	if got := WithFields(nil, zap.String("k", "v")); got == nil {
		t.Fatal("expected a usable logger")
	}
	if got := WithFields(nil); got == nil {
		t.Fatal("expected a no-op logger for no fields")
	}
}
