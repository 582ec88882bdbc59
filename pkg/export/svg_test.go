package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/formulary-tui/formulary/pkg/testutil"
)

func TestSVGSheet(t *testing.T) {
	var buf bytes.Buffer
	formulas := testutil.Formulas(3)
	if err := SVGSheet(&buf, formulas, "Exam Sheet"); err != nil {
		t.Fatalf("render: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "<?xml") {
		t.Errorf("output does not start with an XML declaration: %.60q", out)
	}
	for _, want := range []string{"<svg", "</svg>", "Exam Sheet", "(1)", "(3)", "E = mc^2"} {
		if !strings.Contains(out, want) {
			t.Errorf("sheet missing %q", want)
		}
	}
}

func TestSVGSheetEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	if err := SVGSheet(&buf, nil, ""); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Formula Sheet") {
		t.Error("default title missing")
	}
	if !strings.Contains(out, "</svg>") {
		t.Error("document not closed")
	}
}

func TestTruncateText(t *testing.T) {
	long := strings.Repeat("α", 100)
	got := truncateText(long, 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncated to %d runes, want 10", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncation marker missing: %q", got)
	}
	if truncateText("short", 10) != "short" {
		t.Error("short text was modified")
	}
}
