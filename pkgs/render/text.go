package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	ltree "github.com/charmbracelet/lipgloss/tree"

	"github.com/aledsdavies/treeparse/pkgs/tree"
)

// Palette
var (
	colorTitle    = lipgloss.Color("#8B5CF6")
	colorTerminal = lipgloss.Color("#06B6D4")
	colorLexeme   = lipgloss.Color("#F59E0B")
	colorMuted    = lipgloss.Color("#6B7280")
	colorError    = lipgloss.Color("#EF4444")
)

type textRenderer struct {
	color    bool
	terminal io.Writer
	textStyles
}

type textStyles struct {
	title    lipgloss.Style
	terminal lipgloss.Style
	lexeme   lipgloss.Style
	empty    lipgloss.Style
	failure  lipgloss.Style
	branch   lipgloss.Style
}

func newTextRenderer(color bool, terminal io.Writer) *textRenderer {
	return &textRenderer{color: color, terminal: terminal}
}

// stylesFor builds the palette against the color profile of w, so output that
// is not a terminal stays plain.
func stylesFor(w io.Writer) textStyles {
	lr := lipgloss.NewRenderer(w)
	return textStyles{
		title:    lr.NewStyle().Bold(true).Foreground(colorTitle),
		terminal: lr.NewStyle().Foreground(colorTerminal),
		lexeme:   lr.NewStyle().Bold(true).Foreground(colorLexeme),
		empty:    lr.NewStyle().Italic(true).Foreground(colorMuted),
		failure:  lr.NewStyle().Bold(true).Foreground(colorError),
		branch:   lr.NewStyle().Foreground(colorMuted),
	}
}

// Render writes the tree with box-drawing branches. Terminal leaves show
// their kind as <KIND> with the lexeme beneath.
func (r *textRenderer) Render(w io.Writer, t *tree.Tree) error {
	if t == nil || t.Len() == 0 {
		return nil
	}
	if r.color {
		profile := r.terminal
		if profile == nil {
			profile = w
		}
		r.textStyles = stylesFor(profile)
	}

	root := ltree.Root(r.style(r.title, t.Node(t.Root()).Label))
	r.addChildren(root, t, t.Root())
	if r.color {
		root = root.EnumeratorStyle(r.branch)
	}

	if _, err := fmt.Fprintln(w, root.String()); err != nil {
		return err
	}
	if t.Error != nil {
		if _, err := fmt.Fprintln(w, r.style(r.failure, t.Error.Message)); err != nil {
			return err
		}
	}
	return nil
}

func (r *textRenderer) addChildren(parent *ltree.Tree, t *tree.Tree, id tree.NodeID) {
	for _, child := range t.Node(id).Children {
		parent.Child(r.subtree(t, child))
	}
}

func (r *textRenderer) subtree(t *tree.Tree, id tree.NodeID) any {
	n := t.Node(id)
	switch n.Kind {
	case tree.NodeTerminal:
		leaf := ltree.Root(r.style(r.textStyles.terminal, leafLabel(n)))
		lexeme := n.Lexeme
		if lexeme == "" {
			lexeme = `""`
		}
		return leaf.Child(r.style(r.lexeme, lexeme))
	case tree.NodeEmpty:
		return r.style(r.empty, n.Label)
	}

	if len(n.Children) == 0 {
		return n.Label
	}
	sub := ltree.Root(n.Label)
	r.addChildren(sub, t, id)
	return sub
}

func (r *textRenderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}
