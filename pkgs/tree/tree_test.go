package tree

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedID = uuid.MustParse("6f1c1f3e-2b9a-4a59-9b43-0c1f6c9b2a10")

// buildAssignment drives a sink through the events of `x := 5`
func buildAssignment(s Sink) {
	root := s.OpenRun("PARSE TREE")
	program := s.AddNonterminal(root, "Program")
	list := s.AddNonterminal(program, "StmtList")
	stmt := s.AddNonterminal(list, "stmt")
	id := s.AddNonterminal(stmt, "ID")
	s.AddTerminal(id, "x")
	op := s.AddNonterminal(stmt, "ASSIGN_OP")
	s.AddTerminal(op, ":=")
	num := s.AddNonterminal(stmt, "NUMBER")
	s.AddTerminal(num, "5")
	tail := s.AddNonterminal(list, "StmtList")
	s.AddEmpty(tail)
	s.CloseRun()
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(WithRunIDs(func() uuid.UUID { return fixedID }))
	assert.Nil(t, b.Tree())

	buildAssignment(b)
	tr := b.Tree()
	require.NotNil(t, tr)

	assert.True(t, b.Closed())
	assert.True(t, tr.Ok())
	assert.Equal(t, fixedID, tr.RunID)
	assert.Equal(t, "PARSE TREE", tr.Title)
	assert.Equal(t, 9, tr.Len())

	start, ok := tr.Start()
	require.True(t, ok)
	assert.Equal(t, "Program", tr.Node(start).Label)

	assert.Equal(t, []string{"x", ":=", "5"}, tr.Lexemes())
	assert.Equal(t, []NodeID{2, 7}, tr.Find("StmtList"))
	assert.Equal(t, []string{"PARSE TREE", "Program", "StmtList", "StmtList", EmptyLabel}, tr.Labels(8))
	assert.Equal(t, 4, tr.Depth())

	leaf := tr.Node(4)
	assert.Equal(t, NodeTerminal, leaf.Kind)
	assert.Equal(t, "ID", leaf.Label)
	assert.Empty(t, leaf.Children)

	empty := tr.Node(8)
	assert.Equal(t, NodeEmpty, empty.Kind)
	assert.Equal(t, NodeID(7), empty.Parent)
}

func TestBuilderKeepsFirstError(t *testing.T) {
	b := NewBuilder()
	root := b.OpenRun("t")
	n := b.AddNonterminal(root, "Program")
	b.ReportSyntaxError("first", n)
	b.ReportSyntaxError("second", root)
	b.CloseRun()

	tr := b.Tree()
	assert.False(t, tr.Ok())
	assert.Equal(t, &ErrorRecord{Message: "first", Node: n}, tr.Error)
}

func TestBuilderOpenRunResets(t *testing.T) {
	b := NewBuilder()
	buildAssignment(b)
	first := b.Tree()

	b.OpenRun("again")
	assert.False(t, b.Closed())
	assert.Equal(t, 1, b.Tree().Len())
	assert.Equal(t, 9, first.Len(), "previous tree must stay intact")
}

func TestWalkSkipsChildren(t *testing.T) {
	b := NewBuilder()
	buildAssignment(b)

	var visited []string
	b.Tree().Walk(func(id NodeID, _ int) bool {
		n := b.Tree().Node(id)
		visited = append(visited, n.Label)
		return n.Label != "stmt"
	})

	want := []string{"PARSE TREE", "Program", "StmtList", "stmt", "StmtList", EmptyLabel}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("walk mismatch (-want +got):\n%s", diff)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	buildAssignment(r)

	want := []Event{
		{EventOpen, 0, "PARSE TREE"},
		{EventNonterminal, 1, "Program"},
		{EventNonterminal, 2, "StmtList"},
		{EventNonterminal, 3, "stmt"},
		{EventNonterminal, 4, "ID"},
		{EventTerminal, 4, "x"},
		{EventNonterminal, 5, "ASSIGN_OP"},
		{EventTerminal, 5, ":="},
		{EventNonterminal, 6, "NUMBER"},
		{EventTerminal, 6, "5"},
		{EventNonterminal, 7, "StmtList"},
		{EventEmpty, 8, EmptyLabel},
		{EventClose, NoNode, ""},
	}
	if diff := cmp.Diff(want, r.Events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestTee(t *testing.T) {
	b := NewBuilder()
	r := NewRecorder()

	tee := NewTee(b, r)
	buildAssignment(tee)

	direct := NewBuilder()
	buildAssignment(direct)

	assert.Equal(t, direct.Tree().Fingerprint(), b.Tree().Fingerprint())
	assert.Len(t, r.Events, 13)

	failing := NewTee(b, r)
	root := failing.OpenRun("t")
	n := failing.AddNonterminal(root, "Program")
	failing.ReportSyntaxError("boom", n)
	failing.CloseRun()
	assert.Equal(t, &ErrorRecord{Message: "boom", Node: 1}, b.Tree().Error)
	assert.Equal(t, Event{EventError, 1, "boom"}, r.Events[2])
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	buildAssignment(NewLogSink(logger))

	out := buf.String()
	assert.Contains(t, out, "component=sink")
	assert.Contains(t, out, `msg="open run" component=sink title="PARSE TREE"`)
	assert.Contains(t, out, "label=StmtList")
	assert.Contains(t, out, "lexeme=x")
	assert.Equal(t, 13, strings.Count(out, "\n"))
}

func TestFingerprint(t *testing.T) {
	a := NewBuilder()
	buildAssignment(a)
	b := NewBuilder()
	buildAssignment(b)

	assert.NotEqual(t, a.Tree().RunID, b.Tree().RunID)
	assert.Equal(t, a.Tree().Fingerprint(), b.Tree().Fingerprint())
	assert.Len(t, a.Tree().FingerprintHex(), 64)

	c := NewBuilder()
	root := c.OpenRun("PARSE TREE")
	c.AddEmpty(c.AddNonterminal(root, "Program"))
	c.CloseRun()
	assert.NotEqual(t, a.Tree().Fingerprint(), c.Tree().Fingerprint())

	before := c.Tree().Fingerprint()
	c.ReportSyntaxError("late", 1)
	assert.NotEqual(t, before, c.Tree().Fingerprint())
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "terminal", NodeTerminal.String())
	assert.Equal(t, "unknown", NodeKind(42).String())
	assert.Equal(t, "empty", EventEmpty.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}

func TestDepth(t *testing.T) {
	b := NewBuilder()
	root := b.OpenRun("t")
	assert.Equal(t, 0, b.Tree().Depth())

	parent := root
	for i := 0; i < 5; i++ {
		parent = b.AddNonterminal(parent, "StmtList")
	}
	b.AddNonterminal(root, "Program")
	b.CloseRun()
	assert.Equal(t, 5, b.Tree().Depth())
}
