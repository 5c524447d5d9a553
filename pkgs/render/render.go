// Package render turns a parse tree into text for people or programs.
package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aledsdavies/treeparse/pkgs/tree"
)

// ErrUnknownFormat is returned by ParseFormat for names it does not know
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects a renderer
type Format int

const (
	FormatText Format = iota // Indented tree for terminals
	FormatDOT                // Graphviz digraph
	FormatJSON               // Flat node list
	FormatCBOR               // Same document as JSON, deterministic binary
)

var formatNames = [...]string{
	FormatText: "text",
	FormatDOT:  "dot",
	FormatJSON: "json",
	FormatCBOR: "cbor",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Binary reports whether the format writes non-text output
func (f Format) Binary() bool {
	return f == FormatCBOR
}

// Formats lists the format names in declaration order
func Formats() []string {
	return formatNames[:]
}

// ParseFormat resolves a format name, case-insensitively. Unknown names
// produce an error wrapping ErrUnknownFormat with the closest known name.
func ParseFormat(name string) (Format, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, n := range formatNames {
		if n == lower {
			return Format(i), nil
		}
	}

	ranks := fuzzy.RankFindFold(lower, formatNames[:])
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return 0, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownFormat, name, ranks[0].Target)
	}
	return 0, fmt.Errorf("%w %q (valid: %s)", ErrUnknownFormat, name, strings.Join(formatNames[:], ", "))
}

// Renderer writes a tree in one format
type Renderer interface {
	Render(w io.Writer, t *tree.Tree) error
}

// Option configures renderers
type Option func(*options)

type options struct {
	color    bool
	terminal io.Writer
}

// WithColor enables terminal styling in the text renderer. Styling is only
// emitted when the output is a color terminal.
func WithColor(enabled bool) Option {
	return func(o *options) {
		o.color = enabled
	}
}

// WithTerminal detects the color profile from w instead of the output writer,
// for text rendered into a buffer that is later shown on w
func WithTerminal(w io.Writer) Option {
	return func(o *options) {
		o.terminal = w
	}
}

// New returns the renderer for format
func New(format Format, opts ...Option) (Renderer, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	switch format {
	case FormatText:
		return newTextRenderer(o.color, o.terminal), nil
	case FormatDOT:
		return dotRenderer{}, nil
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatCBOR:
		return newCBORRenderer()
	default:
		return nil, fmt.Errorf("%w %s", ErrUnknownFormat, format)
	}
}

// Render is a convenience wrapper around New and Renderer.Render
func Render(w io.Writer, t *tree.Tree, format Format, opts ...Option) error {
	r, err := New(format, opts...)
	if err != nil {
		return err
	}
	return r.Render(w, t)
}

// leafLabel is how terminal nodes are labelled in every text format
func leafLabel(n *tree.Node) string {
	return "<" + n.Label + ">"
}
