package main

import (
	"strings"
	"testing"
)

func TestRenderTableAlignsNumericColumns(t *testing.T) {
	out := renderTable([]column{textCol("Name"), numCol("Count")}, [][]string{
		{"a", "5"},
		{"b", "1234"},
		{"c"},
	})

	lines := strings.Split(out, "\n")
	find := func(prefix string) string {
		t.Helper()
		for _, line := range lines {
			if strings.HasPrefix(line, "│ "+prefix) {
				return line
			}
		}
		t.Fatalf("no row starting with %q in:\n%s", prefix, out)
		return ""
	}

	if row := find("a"); !strings.Contains(row, "│ a    │") || !strings.Contains(row, "    5 │") {
		t.Fatalf("expected left text and right-aligned count, got %q", row)
	}
	if row := find("b"); !strings.Contains(row, "  1234 │") {
		t.Fatalf("expected right-aligned count, got %q", row)
	}
	if header := find("NAME"); !strings.Contains(header, "│ COUNT │") {
		t.Fatalf("unexpected header: %q", header)
	}
	if row := find("c"); !strings.HasSuffix(row, "│       │") {
		t.Fatalf("short rows should be padded, got %q", row)
	}
}

func TestRenderTableWithoutColumns(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
