package cli

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a buffer and returns
// what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestTableFlushEmptyPrintsNothing(t *testing.T) {
	out := captureStdout(t, func() {
		NewTable("Setting", "Value").Flush()
	})
	if out != "" {
		t.Errorf("expected no output for an empty table, got %q", out)
	}
}

func TestTableFlushAlignsColumns(t *testing.T) {
	out := captureStdout(t, func() {
		tbl := NewTable("Setting", "Value")
		tbl.Row("Store", "127.0.0.1:2379")
		tbl.Row("Debug", "false")
		tbl.Flush()
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 { // header, divider, 2 rows
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "Setting") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "-------") { // len("Setting") dashes
		t.Errorf("divider line = %q", lines[1])
	}
	// The "Value" column should start at the same offset on every line —
	// "Store" and "Debug" are shorter than the "Setting" header, so the
	// column only lines up if every first-column cell was padded to the
	// widest first-column entry ("Setting").
	valueCol := strings.Index(lines[0], "Value")
	for _, l := range lines[2:] {
		if !strings.HasPrefix(l[valueCol:], "1") && !strings.HasPrefix(l[valueCol:], "f") {
			t.Errorf("row value not aligned to header column: %q", l)
		}
	}
}

func TestTableWithPrefixIndentsEveryLine(t *testing.T) {
	out := captureStdout(t, func() {
		tbl := NewTable("A").WithPrefix("  ")
		tbl.Row("x")
		tbl.Flush()
	})
	for _, l := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if !strings.HasPrefix(l, "  ") {
			t.Errorf("line missing prefix: %q", l)
		}
	}
}

func TestVisualLenStripsANSI(t *testing.T) {
	colored := "\x1b[32mPASS\x1b[0m"
	if got := visualLen(colored); got != 4 {
		t.Errorf("visualLen(%q) = %d, want 4", colored, got)
	}
}

func TestVisualLenCountsRunesNotBytes(t *testing.T) {
	if got := visualLen("résumé"); got != 6 {
		t.Errorf("visualLen(résumé) = %d, want 6", got)
	}
}
