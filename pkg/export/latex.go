// Package export generates the shareable artifacts of a formula
// collection: a standalone LaTeX document, a Markdown document, plain JSON
// mirroring the in-memory collection, and an SVG formula sheet snapshot.
package export

import (
	"fmt"
	"strings"

	"github.com/formulary-tui/formulary/pkg/model"
)

// EscapeLaTeXText escapes the characters that are special in LaTeX text
// mode. Applied to note text only; formula bodies are already LaTeX.
func EscapeLaTeXText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, ch := range text {
		switch ch {
		case '\\', '#', '%', '&', '_', '$', '^', '{', '}':
			sb.WriteByte('\\')
			sb.WriteRune(ch)
		default:
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// LaTeXDocument renders the collection as a compilable article: each
// formula in a numbered equation environment labelled eq:N, preceded by a
// bold note line when the formula carries a note. An empty collection
// yields an empty string.
func LaTeXDocument(formulas []model.Formula) string {
	if len(formulas) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(formulas))
	for idx, f := range formulas {
		var sb strings.Builder
		if note := strings.TrimSpace(f.Note); note != "" {
			sb.WriteString(fmt.Sprintf("\\noindent\\textbf{%s}\\\\\n", EscapeLaTeXText(note)))
		}
		sb.WriteString(fmt.Sprintf("\\begin{equation}\\label{eq:%d}\n%s\n\\end{equation}", idx+1, f.LaTeX))
		blocks = append(blocks, sb.String())
	}

	return fmt.Sprintf(
		"\\documentclass{article}\n\\usepackage{amsmath}\n\\begin{document}\n%s\n\\end{document}\n",
		strings.Join(blocks, "\n"),
	)
}
