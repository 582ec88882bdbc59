// Package render converts LaTeX source into a terminal-displayable Unicode
// approximation. It fills the role of the math rendering collaborator:
// given LaTeX it produces a renderable representation or a descriptive
// error. The approximation is intentionally shallow — greek letters, common
// operators, super/subscripts, simple fractions — because the point is a
// recognizable preview, not typesetting.
package render

import (
	"fmt"
	"strings"
	"unicode"
)

// commands maps LaTeX control sequences to their Unicode spellings.
// Longest-match wins during scanning.
var commands = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"zeta": "ζ", "eta": "η", "theta": "θ", "iota": "ι", "kappa": "κ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "pi": "π", "rho": "ρ",
	"sigma": "σ", "tau": "τ", "upsilon": "υ", "phi": "φ", "chi": "χ",
	"psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ", "Psi": "Ψ",
	"Omega": "Ω",
	"pm": "±", "mp": "∓", "times": "×", "div": "÷", "cdot": "·",
	"infty": "∞", "leq": "≤", "geq": "≥", "neq": "≠", "approx": "≈",
	"equiv": "≡", "sim": "∼", "propto": "∝",
	"rightarrow": "→", "leftarrow": "←", "Rightarrow": "⇒", "Leftarrow": "⇐",
	"leftrightarrow": "↔", "mapsto": "↦", "to": "→",
	"sum": "Σ", "prod": "Π", "int": "∫", "oint": "∮", "sqrt": "√",
	"partial": "∂", "nabla": "∇", "in": "∈", "notin": "∉", "subset": "⊂",
	"subseteq": "⊆", "supset": "⊃", "cup": "∪", "cap": "∩",
	"forall": "∀", "exists": "∃", "neg": "¬", "land": "∧", "lor": "∨",
	"emptyset": "∅", "aleph": "ℵ", "hbar": "ℏ", "ell": "ℓ",
	"angle": "∠", "perp": "⊥", "parallel": "∥", "degree": "°",
	"ldots": "…", "cdots": "⋯", "dots": "…",
	"quad": "  ", "qquad": "    ", ",": " ", ";": " ", " ": " ",
	"left": "", "right": "", "displaystyle": "",
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵',
	'6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹', '+': '⁺', '-': '⁻',
	'n': 'ⁿ', 'i': 'ⁱ', '(': '⁽', ')': '⁾',
}

var subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅',
	'6': '₆', '7': '₇', '8': '₈', '9': '₉', '+': '₊', '-': '₋',
	'(': '₍', ')': '₎',
}

// Translate converts a LaTeX expression into its Unicode approximation.
// Unbalanced groups yield a descriptive error rather than partial output.
func Translate(latex string) (string, error) {
	latex = strings.TrimSpace(latex)
	if latex == "" {
		return "", nil
	}
	if err := checkBalance(latex); err != nil {
		return "", err
	}

	var sb strings.Builder
	runes := []rune(latex)
	for i := 0; i < len(runes); {
		ch := runes[i]
		switch ch {
		case '\\':
			name, consumed := scanCommand(runes[i+1:])
			if name == "frac" {
				num, den, after, ok := scanFrac(runes[i+1+consumed:])
				if ok {
					numOut, _ := Translate(num)
					denOut, _ := Translate(den)
					sb.WriteString(fmt.Sprintf("(%s)/(%s)", numOut, denOut))
					i += 1 + consumed + after
					continue
				}
			}
			if repl, known := commands[name]; known {
				sb.WriteString(repl)
			} else {
				// Unknown command: keep the bare name so the preview
				// stays readable.
				sb.WriteString(name)
			}
			i += 1 + consumed
		case '^', '_':
			arg, consumed := scanArgument(runes[i+1:])
			table := superscripts
			marker := "^"
			if ch == '_' {
				table = subscripts
				marker = "_"
			}
			translated, _ := Translate(arg)
			sb.WriteString(scriptify(translated, table, marker))
			i += 1 + consumed
		case '{', '}':
			i++
		default:
			sb.WriteRune(ch)
			i++
		}
	}
	return sb.String(), nil
}

// checkBalance verifies that braces pair up, reporting the offending
// position in the error.
func checkBalance(latex string) error {
	depth := 0
	for pos, ch := range latex {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced group: unexpected '}' at position %d", pos)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced group: %d unclosed '{'", depth)
	}
	return nil
}

// scanCommand reads a control sequence name after a backslash. Single
// non-letter characters (\, or \{) are commands too.
func scanCommand(runes []rune) (name string, consumed int) {
	if len(runes) == 0 {
		return "", 0
	}
	if !unicode.IsLetter(runes[0]) {
		return string(runes[0]), 1
	}
	i := 0
	for i < len(runes) && unicode.IsLetter(runes[i]) {
		i++
	}
	return string(runes[:i]), i
}

// scanArgument reads a script argument: either a braced group or a single
// character.
func scanArgument(runes []rune) (arg string, consumed int) {
	if len(runes) == 0 {
		return "", 0
	}
	if runes[0] != '{' {
		if runes[0] == '\\' {
			name, n := scanCommand(runes[1:])
			return "\\" + name, 1 + n
		}
		return string(runes[0]), 1
	}
	depth := 0
	for i, ch := range runes {
		if ch == '{' {
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 {
				return string(runes[1:i]), i + 1
			}
		}
	}
	return string(runes[1:]), len(runes)
}

// scanFrac reads the two braced arguments of \frac.
func scanFrac(runes []rune) (num, den string, consumed int, ok bool) {
	if len(runes) == 0 || runes[0] != '{' {
		return "", "", 0, false
	}
	num, n1 := scanArgument(runes)
	rest := runes[n1:]
	if len(rest) == 0 || rest[0] != '{' {
		return "", "", 0, false
	}
	den, n2 := scanArgument(rest)
	return num, den, n1 + n2, true
}

// scriptify maps text through a super/subscript table, falling back to
// marker notation (x^(ab)) when any rune has no script form.
func scriptify(text string, table map[rune]rune, marker string) string {
	mapped := make([]rune, 0, len(text))
	for _, ch := range text {
		m, known := table[ch]
		if !known {
			if len([]rune(text)) == 1 {
				return marker + text
			}
			return marker + "(" + text + ")"
		}
		mapped = append(mapped, m)
	}
	return string(mapped)
}
