package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/treeparse/pkgs/tree"
)

// dotRenderer writes a Graphviz digraph, one node statement and one edge per
// tree node in pre-order
type dotRenderer struct{}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func (dotRenderer) Render(w io.Writer, t *tree.Tree) error {
	if t == nil || t.Len() == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "digraph \"%s\" {\n", dotEscaper.Replace(t.Title))
	fmt.Fprintln(bw, "\tnode [shape=box, fontname=\"monospace\"];")

	t.Walk(func(id tree.NodeID, _ int) bool {
		n := t.Node(id)
		switch n.Kind {
		case tree.NodeTerminal:
			fmt.Fprintf(bw, "\tn%d [label=\"%s\\n%s\", shape=ellipse];\n",
				id, dotEscaper.Replace(leafLabel(n)), dotEscaper.Replace(n.Lexeme))
		case tree.NodeEmpty:
			fmt.Fprintf(bw, "\tn%d [label=\"%s\", shape=plaintext];\n", id, n.Label)
		case tree.NodeRun:
			fmt.Fprintf(bw, "\tn%d [label=\"%s\", shape=doubleoctagon];\n", id, dotEscaper.Replace(n.Label))
		default:
			fmt.Fprintf(bw, "\tn%d [label=\"%s\"];\n", id, dotEscaper.Replace(n.Label))
		}
		if n.Parent != tree.NoNode {
			fmt.Fprintf(bw, "\tn%d -> n%d;\n", n.Parent, id)
		}
		return true
	})

	if t.Error != nil {
		fmt.Fprintf(bw, "\terror [label=\"%s\", shape=note, color=red];\n", dotEscaper.Replace(t.Error.Message))
		if t.Error.Node != tree.NoNode {
			fmt.Fprintf(bw, "\tn%d -> error [style=dashed, color=red];\n", t.Error.Node)
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
