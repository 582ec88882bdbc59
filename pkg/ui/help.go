package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# formulary

A terminal formula editor with a template library.

## Formula list

| Key | Action |
| --- | ------ |
| j / k | move selection |
| g / G | jump to first / last |
| a | add a formula |
| e | edit the selected formula |
| d | delete the selected formula |
| y | copy the selected LaTeX to the clipboard |
| t | save the selected formula as a template |
| enter | insert the selected template as a formula |

## Category tree

| Key | Action |
| --- | ------ |
| j / k | move selection |
| space | expand / collapse |
| enter | select category scope |
| n | new category under the cursor |
| r | rename category |
| d | delete category and its subtree |

## Global

| Key | Action |
| --- | ------ |
| tab | switch pane |
| / | search templates in the selected scope |
| s | save now |
| ? | toggle this help |
| q | quit |

Autosave runs about a second after each change and once a minute as a
backstop. A failed save unbinds the document; press ` + "`s`" + ` to retry
after fixing the storage problem.
`

// RenderHelp renders the help screen as styled markdown sized to the
// current terminal width.
func RenderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
