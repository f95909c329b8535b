package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderTableRightAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Count"},
		[][]string{{"guards", "7"}, {"villagers", "1234"}},
		1,
	)
	if !strings.Contains(out, "guards") || !strings.Contains(out, "1234") {
		t.Fatalf("table missing rows:\n%s", out)
	}
	// Right alignment pads the short count on the left.
	if !strings.Contains(out, "    7 ") {
		t.Fatalf("Count column is not right-aligned:\n%s", out)
	}
}

func TestWriteJSONIndents(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, map[string]int{"nodes": 2}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	if got := buf.String(); got != "{\n  \"nodes\": 2\n}\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}
