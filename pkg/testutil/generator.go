package testutil

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/formulary-tui/formulary/pkg/model"
)

// sampleLaTeX are realistic snippets used by the deterministic generators.
var sampleLaTeX = []string{
	`E = mc^2`,
	`\frac{a}{b}`,
	`\sum_{i=1}^{n} i`,
	`\int_0^\infty e^{-x} dx`,
	`\alpha + \beta = \gamma`,
	`x^2 + y^2 = r^2`,
	`\sqrt{2}`,
	`\lim_{x \to 0} \frac{\sin x}{x} = 1`,
}

// Formulas returns n deterministic formulas with contiguous indices.
func Formulas(n int) []model.Formula {
	out := make([]model.Formula, n)
	for i := range out {
		out[i] = model.Formula{
			ID:    fmt.Sprintf("formula-%d", i+1),
			Index: i + 1,
			LaTeX: sampleLaTeX[i%len(sampleLaTeX)],
		}
		if i%3 == 0 {
			out[i].Note = fmt.Sprintf("Note %d", i+1)
		}
	}
	return out
}

// Library returns a small deterministic template library: two roots, one
// with a child holding templates.
func Library() model.Library {
	return model.Library{
		Categories: []model.Category{
			{ID: "cat-algebra", Name: "Algebra", Templates: []model.Template{
				{ID: "tpl-1", Name: "Quadratic", LaTeX: `ax^2 + bx + c = 0`},
			}},
			{ID: "cat-calculus", Name: "Calculus"},
			{ID: "cat-limits", Name: "Limits", ParentID: "cat-calculus", Templates: []model.Template{
				{ID: "tpl-2", Name: "Sine limit", LaTeX: `\lim_{x \to 0} \frac{\sin x}{x} = 1`, Note: "classic"},
				{ID: "tpl-3", Name: "Euler", LaTeX: `e = \lim_{n \to \infty} (1 + 1/n)^n`},
			}},
		},
		SelectedCategoryID: "cat-algebra",
	}
}

// FormulaGen is a rapid generator of valid formulas.
func FormulaGen() *rapid.Generator[model.Formula] {
	return rapid.Custom(func(t *rapid.T) model.Formula {
		return model.Formula{
			ID:    fmt.Sprintf("formula-%s", rapid.StringMatching(`[a-z0-9]{6}`).Draw(t, "id")),
			Index: rapid.IntRange(1, 10_000).Draw(t, "index"),
			LaTeX: rapid.SampledFrom(sampleLaTeX).Draw(t, "latex"),
			Note:  rapid.SampledFrom([]string{"", "note", "longer note text"}).Draw(t, "note"),
		}
	})
}
