package render

import (
	"strings"
	"testing"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "a + b = c", "a + b = c"},
		{"greek", `\alpha + \beta = \gamma`, "α + β = γ"},
		{"uppercase greek", `\Sigma \Omega`, "Σ Ω"},
		{"operators", `a \times b \leq \infty`, "a × b ≤ ∞"},
		{"superscript digit", `E = mc^2`, "E = mc²"},
		{"superscript group", `x^{12}`, "x¹²"},
		{"superscript fallback", `x^{ab}`, "x^(ab)"},
		{"subscript", `x_1 + x_2`, "x₁ + x₂"},
		{"subscript fallback single", `x_k`, "x_k"},
		{"fraction", `\frac{a}{b}`, "(a)/(b)"},
		{"nested fraction", `\frac{1}{\frac{2}{3}}`, "(1)/((2)/(3))"},
		{"fraction with greek", `\frac{\pi}{2}`, "(π)/(2)"},
		{"sum with bounds", `\sum_{i=1}^{n} i`, "Σ_(i=1)ⁿ i"},
		{"sqrt", `\sqrt{2}`, "√2"},
		{"unknown command keeps name", `\foo`, "foo"},
		{"braces stripped", `{a}{b}`, "ab"},
		{"spacing commands", `a\quad{}b`, "a  b"},
		{"arrow", `f: A \to B`, "f: A → B"},
		{"whitespace trimmed", "  x  ", "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Translate(tc.in)
			if err != nil {
				t.Fatalf("Translate(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Translate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTranslateUnbalanced(t *testing.T) {
	cases := []struct {
		in       string
		wantText string
	}{
		{`\frac{a}{b`, "unclosed"},
		{`x^{2`, "unclosed"},
		{`a}b`, "unexpected '}'"},
	}
	for _, tc := range cases {
		out, err := Translate(tc.in)
		if err == nil {
			t.Errorf("Translate(%q) accepted unbalanced input: %q", tc.in, out)
			continue
		}
		if out != "" {
			t.Errorf("Translate(%q) returned partial output %q alongside an error", tc.in, out)
		}
		if !strings.Contains(err.Error(), tc.wantText) {
			t.Errorf("Translate(%q) error = %q, want mention of %q", tc.in, err, tc.wantText)
		}
	}
}
