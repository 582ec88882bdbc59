package export

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/formulary-tui/formulary/pkg/model"
)

// Sheet layout constants. The sheet renders LaTeX source verbatim in
// monospace; it is a reference card, not a typeset rendering.
const (
	sheetWidth     = 900
	sheetMargin    = 24
	sheetHeader    = 64
	sheetRowHeight = 72
	sheetRowGap    = 12
)

// SVGSheet writes the collection as an SVG formula sheet: a titled page
// with one boxed row per formula showing its number, note, and LaTeX
// source.
func SVGSheet(w io.Writer, formulas []model.Formula, title string) error {
	if title == "" {
		title = "Formula Sheet"
	}
	height := sheetHeader + sheetMargin
	if len(formulas) > 0 {
		height += len(formulas)*(sheetRowHeight+sheetRowGap) - sheetRowGap + sheetMargin
	}

	canvas := svg.New(w)
	canvas.Start(sheetWidth, height)
	canvas.Rect(0, 0, sheetWidth, height, "fill:#fdfdfd")
	canvas.Text(sheetMargin, 42, title, "fill:#222;font-size:24px;font-family:sans-serif;font-weight:bold")
	canvas.Line(sheetMargin, sheetHeader-8, sheetWidth-sheetMargin, sheetHeader-8, "stroke:#ccc;stroke-width:1")

	y := sheetHeader
	for _, f := range formulas {
		canvas.Roundrect(sheetMargin, y, sheetWidth-2*sheetMargin, sheetRowHeight, 8, 8,
			"fill:#ffffff;stroke:#d0d0d0;stroke-width:1")
		canvas.Text(sheetMargin+16, y+28, fmt.Sprintf("(%d)", f.Index),
			"fill:#888;font-size:14px;font-family:monospace")
		if f.Note != "" {
			canvas.Text(sheetMargin+70, y+28, truncateText(f.Note, 80),
				"fill:#333;font-size:14px;font-family:sans-serif;font-weight:bold")
		}
		canvas.Text(sheetMargin+70, y+52, truncateText(f.LaTeX, 90),
			"fill:#111;font-size:15px;font-family:monospace")
		y += sheetRowHeight + sheetRowGap
	}

	canvas.End()
	return nil
}

// truncateText bounds a label, UTF-8 safe.
func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
