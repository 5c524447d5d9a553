package tree

import (
	"github.com/google/uuid"
)

// NodeID addresses a node inside a Tree's arena
type NodeID int

// NoNode is the parent of the run root
const NoNode NodeID = -1

// NodeKind represents the shape of a parse tree node
type NodeKind uint8

const (
	NodeRun         NodeKind = iota // Run header created by OpenRun
	NodeNonterminal                 // Grammar symbol with ordered children
	NodeTerminal                    // Token kind with its lexeme, no children
	NodeEmpty                       // Chosen epsilon alternative
)

var nodeKindNames = [...]string{
	NodeRun:         "run",
	NodeNonterminal: "nonterminal",
	NodeTerminal:    "terminal",
	NodeEmpty:       "empty",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "unknown"
}

// EmptyLabel is the label of every epsilon marker
const EmptyLabel = "EMPTY"

// Node is one entry of the arena. Children are kept in attachment order.
type Node struct {
	Kind     NodeKind
	Label    string
	Lexeme   string
	Parent   NodeID
	Children []NodeID
}

// ErrorRecord is the fatal syntax error reported for a run
type ErrorRecord struct {
	Message string
	Node    NodeID
}

// Tree is an arena-backed parse tree. Node 0 is the run root.
type Tree struct {
	Title string
	RunID uuid.UUID
	Nodes []Node
	Error *ErrorRecord
}

// Root returns the id of the run root
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of nodes including the run root
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Node returns the node stored under id
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Ok reports whether the run finished without a syntax error
func (t *Tree) Ok() bool {
	return t.Error == nil
}

// Start returns the first node below the run root, normally the start
// symbol, and false when the tree has none.
func (t *Tree) Start() (NodeID, bool) {
	if len(t.Nodes) == 0 || len(t.Nodes[0].Children) == 0 {
		return NoNode, false
	}
	return t.Nodes[0].Children[0], true
}

// Walk visits every node in pre-order, left to right. Returning false from fn
// skips the children of that node. The walk uses an explicit stack so deep
// trees do not grow the call stack.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	if len(t.Nodes) == 0 {
		return
	}

	type frame struct {
		id    NodeID
		depth int
	}
	stack := []frame{{t.Root(), 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(top.id, top.depth) {
			continue
		}
		children := t.Nodes[top.id].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], top.depth + 1})
		}
	}
}

// Leaves returns the terminal nodes in left-to-right order
func (t *Tree) Leaves() []Node {
	var leaves []Node
	t.Walk(func(id NodeID, _ int) bool {
		if n := t.Nodes[id]; n.Kind == NodeTerminal {
			leaves = append(leaves, n)
		}
		return true
	})
	return leaves
}

// Lexemes returns the lexemes of all terminal leaves in tree order
func (t *Tree) Lexemes() []string {
	leaves := t.Leaves()
	lexemes := make([]string, len(leaves))
	for i, leaf := range leaves {
		lexemes[i] = leaf.Lexeme
	}
	return lexemes
}

// Labels returns the labels along the path from the run root to id
func (t *Tree) Labels(id NodeID) []string {
	var path []string
	for id != NoNode {
		path = append(path, t.Nodes[id].Label)
		id = t.Nodes[id].Parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Find returns the ids of all nodes labelled label, in pre-order
func (t *Tree) Find(label string) []NodeID {
	var ids []NodeID
	t.Walk(func(id NodeID, _ int) bool {
		if t.Nodes[id].Label == label {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// Depth returns the greatest node depth, with the run root at depth 0
func (t *Tree) Depth() int {
	deepest := 0
	t.Walk(func(_ NodeID, depth int) bool {
		if depth > deepest {
			deepest = depth
		}
		return true
	})
	return deepest
}
