package tree

import (
	"github.com/google/uuid"
)

// Sink receives the parse events of one run.
//
// OpenRun begins a run and returns the parent for the start symbol.
// AddNonterminal returns a handle usable as parent for further attachment.
// AddTerminal turns a freshly added node into a leaf holding lexeme.
// ReportSyntaxError records the fatal error of the run; nothing added after it
// is meaningful. CloseRun finalizes the run whether it failed or not.
type Sink interface {
	OpenRun(title string) NodeID
	AddNonterminal(parent NodeID, label string) NodeID
	AddTerminal(node NodeID, lexeme string)
	AddEmpty(parent NodeID)
	ReportSyntaxError(message string, node NodeID)
	CloseRun()
}

// BuilderOpt represents a builder configuration option
type BuilderOpt func(*Builder)

// WithRunIDs sets the generator used for run identifiers
func WithRunIDs(next func() uuid.UUID) BuilderOpt {
	return func(b *Builder) {
		b.newID = next
	}
}

// Builder is a Sink that materializes the run as an arena Tree
type Builder struct {
	tree   *Tree
	closed bool
	newID  func() uuid.UUID
}

// NewBuilder creates a builder with optional configuration
func NewBuilder(opts ...BuilderOpt) *Builder {
	b := &Builder{newID: uuid.New}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OpenRun starts a new tree, discarding any previous one
func (b *Builder) OpenRun(title string) NodeID {
	b.tree = &Tree{
		Title: title,
		RunID: b.newID(),
		Nodes: make([]Node, 0, 64),
	}
	b.closed = false
	return b.add(NoNode, NodeRun, title)
}

// AddNonterminal appends a nonterminal node under parent
func (b *Builder) AddNonterminal(parent NodeID, label string) NodeID {
	return b.add(parent, NodeNonterminal, label)
}

// AddTerminal attaches lexeme to node and marks it as a leaf
func (b *Builder) AddTerminal(node NodeID, lexeme string) {
	n := &b.tree.Nodes[node]
	n.Kind = NodeTerminal
	n.Lexeme = lexeme
}

// AddEmpty appends an epsilon marker under parent
func (b *Builder) AddEmpty(parent NodeID) {
	b.add(parent, NodeEmpty, EmptyLabel)
}

// ReportSyntaxError records the run's fatal error. Only the first report is kept.
func (b *Builder) ReportSyntaxError(message string, node NodeID) {
	if b.tree.Error != nil {
		return
	}
	b.tree.Error = &ErrorRecord{Message: message, Node: node}
}

// CloseRun finalizes the tree
func (b *Builder) CloseRun() {
	b.closed = true
}

// Tree returns the tree of the last run, or nil before the first OpenRun
func (b *Builder) Tree() *Tree {
	return b.tree
}

// Closed reports whether the current run has been closed
func (b *Builder) Closed() bool {
	return b.closed
}

func (b *Builder) add(parent NodeID, kind NodeKind, label string) NodeID {
	id := NodeID(len(b.tree.Nodes))
	b.tree.Nodes = append(b.tree.Nodes, Node{
		Kind:   kind,
		Label:  label,
		Parent: parent,
	})
	if parent != NoNode {
		p := &b.tree.Nodes[parent]
		p.Children = append(p.Children, id)
	}
	return id
}
