package export

import (
	"fmt"
	"strings"

	"github.com/formulary-tui/formulary/pkg/model"
)

// MarkdownDocument renders the collection as Markdown: one section per
// formula with an optional bold note line and a display-math block. An
// empty collection yields an empty string.
func MarkdownDocument(formulas []model.Formula) string {
	if len(formulas) == 0 {
		return ""
	}

	segments := make([]string, 0, len(formulas))
	for idx, f := range formulas {
		parts := []string{fmt.Sprintf("### Formula %d", idx+1)}
		if note := strings.TrimSpace(f.Note); note != "" {
			parts = append(parts, fmt.Sprintf("**%s**", note))
		}
		parts = append(parts, "$$", f.LaTeX, "$$")
		segments = append(segments, strings.Join(parts, "\n\n"))
	}
	return strings.Join(segments, "\n\n")
}
