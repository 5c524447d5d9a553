package parser

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/treeparse/pkgs/lexer"
	"github.com/aledsdavies/treeparse/pkgs/tree"
)

// childLabels returns the labels of the direct children of id
func childLabels(tr *tree.Tree, id tree.NodeID) []string {
	var labels []string
	for _, child := range tr.Node(id).Children {
		labels = append(labels, tr.Node(child).Label)
	}
	return labels
}

// single returns the only node labelled label
func single(t *testing.T, tr *tree.Tree, label string) tree.NodeID {
	t.Helper()
	ids := tr.Find(label)
	require.Len(t, ids, 1, "expected exactly one %s node", label)
	return ids[0]
}

func TestAssignmentEvents(t *testing.T) {
	r := tree.NewRecorder()
	result := Analyze(lexer.NewSource("x := 5 ."), r)
	require.True(t, result.Ok())

	want := []tree.Event{
		{Kind: tree.EventOpen, Node: 0, Text: DefaultTitle},
		{Kind: tree.EventNonterminal, Node: 1, Text: "Program"},
		{Kind: tree.EventNonterminal, Node: 2, Text: "StmtList"},
		{Kind: tree.EventNonterminal, Node: 3, Text: "stmt"},
		{Kind: tree.EventNonterminal, Node: 4, Text: "ID"},
		{Kind: tree.EventTerminal, Node: 4, Text: "x"},
		{Kind: tree.EventNonterminal, Node: 5, Text: "ASSIGN_OP"},
		{Kind: tree.EventTerminal, Node: 5, Text: ":="},
		{Kind: tree.EventNonterminal, Node: 6, Text: "Expr"},
		{Kind: tree.EventNonterminal, Node: 7, Text: "Expo"},
		{Kind: tree.EventNonterminal, Node: 8, Text: "Term"},
		{Kind: tree.EventNonterminal, Node: 9, Text: "Factor"},
		{Kind: tree.EventNonterminal, Node: 10, Text: "NUMBER"},
		{Kind: tree.EventTerminal, Node: 10, Text: "5"},
		{Kind: tree.EventNonterminal, Node: 11, Text: "FactorTail"},
		{Kind: tree.EventEmpty, Node: 12, Text: tree.EmptyLabel},
		{Kind: tree.EventNonterminal, Node: 13, Text: "TermTail"},
		{Kind: tree.EventEmpty, Node: 14, Text: tree.EmptyLabel},
		{Kind: tree.EventNonterminal, Node: 15, Text: "StmtList"},
		{Kind: tree.EventEmpty, Node: 16, Text: tree.EmptyLabel},
		{Kind: tree.EventNonterminal, Node: 17, Text: "EOF"},
		{Kind: tree.EventTerminal, Node: 17, Text: "."},
		{Kind: tree.EventClose, Node: tree.NoNode},
	}
	if diff := cmp.Diff(want, r.Events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignmentShape(t *testing.T) {
	tr, result := ParseString("x := 5 .")
	require.True(t, result.Ok())
	require.True(t, tr.Ok())

	program, ok := tr.Start()
	require.True(t, ok)
	assert.Equal(t, []string{"StmtList", "EOF"}, childLabels(tr, program))

	stmt := single(t, tr, "stmt")
	assert.Equal(t, []string{"ID", "ASSIGN_OP", "Expr"}, childLabels(tr, stmt))

	lists := tr.Find("StmtList")
	require.Len(t, lists, 2)
	assert.Equal(t, []string{"stmt", "StmtList"}, childLabels(tr, lists[0]))
	assert.Equal(t, []string{tree.EmptyLabel}, childLabels(tr, lists[1]))
}

func TestIfWithoutElse(t *testing.T) {
	tr, result := ParseString("if n < 10 then write n fi")
	require.True(t, result.Ok(), "unexpected error: %v", result.Error())

	ifStmt := single(t, tr, "if_stmt")
	assert.Equal(t, []string{"IF", "condition", "THEN", "StmtList", "FI"}, childLabels(tr, ifStmt))
	assert.Empty(t, tr.Find("else_part"))

	cond := single(t, tr, "condition")
	assert.Equal(t, []string{"Expr", "REL_OP", "Expr"}, childLabels(tr, cond))
}

func TestIfWithElse(t *testing.T) {
	tr, result := ParseString("if n < 10 then write n else write 0 fi")
	require.True(t, result.Ok(), "unexpected error: %v", result.Error())

	ifStmt := single(t, tr, "if_stmt")
	assert.Equal(t, []string{"IF", "condition", "THEN", "StmtList", "else_part", "FI"}, childLabels(tr, ifStmt))

	elsePart := single(t, tr, "else_part")
	assert.Equal(t, []string{"ELSE", "StmtList"}, childLabels(tr, elsePart))
}

func TestWhile(t *testing.T) {
	tr, result := ParseString("while n > 0 do read n od")
	require.True(t, result.Ok(), "unexpected error: %v", result.Error())

	while := single(t, tr, "while_stmt")
	assert.Equal(t, []string{"WHILE", "condition", "DO", "StmtList", "OD"}, childLabels(tr, while))

	body := tr.Node(while).Children[3]
	assert.Equal(t, []string{"stmt", "StmtList"}, childLabels(tr, body))

	// The body holds exactly one statement: read n
	stmts := tr.Find("stmt")
	require.Len(t, stmts, 2)
	assert.Equal(t, []string{"while_stmt"}, childLabels(tr, stmts[0]))
	assert.Equal(t, []string{"READ", "ID"}, childLabels(tr, stmts[1]))
}

func TestDoUntil(t *testing.T) {
	tr, result := ParseString("do x := 1 until x = 1")
	require.True(t, result.Ok(), "unexpected error: %v", result.Error())

	loop := single(t, tr, "do_until_stmt")
	assert.Equal(t, []string{"DO", "StmtList", "UNTIL", "condition"}, childLabels(tr, loop))
	assert.Empty(t, tr.Find("OD"))
}

func TestMissingFi(t *testing.T) {
	tr, result := ParseString("if n < 10 then write n")
	require.False(t, result.Ok())

	err := result.Err
	assert.Equal(t, lexer.FI, err.Expected)
	assert.Equal(t, lexer.EOF, err.Found)
	assert.True(t, err.AtEOF())
	assert.Equal(t, "syntax error at 1:23: 'FI' was expected but 'end of input' was found", err.Error())

	assert.Equal(t, "if_stmt", tr.Node(err.Node).Label)
	require.NotNil(t, tr.Error)
	assert.Equal(t, err.Error(), tr.Error.Message)
	assert.Equal(t, err.Node, tr.Error.Node)

	var syntaxErr *SyntaxError
	assert.True(t, errors.As(result.Error(), &syntaxErr))
}

func TestParenthesisedFactor(t *testing.T) {
	tr, result := ParseString("x := ( 1 + 2 ) * 3 .")
	require.True(t, result.Ok(), "unexpected error: %v", result.Error())

	factors := tr.Find("Factor")
	require.Len(t, factors, 4)
	assert.Equal(t, []string{"LEFT_PAREN", "Expr", "RIGHT_PAREN"}, childLabels(tr, factors[0]))

	depth := map[string]int{}
	for _, id := range tr.Find("NUMBER") {
		leaf := tr.Node(id)
		depth[leaf.Lexeme] = len(tr.Labels(id))
	}
	require.Len(t, depth, 3)
	assert.Greater(t, depth["1"], depth["3"])
	assert.Greater(t, depth["2"], depth["3"])

	// The multiplicative chain hangs off the outer Term, not the inner one
	outerTerm := tr.Find("Term")[0]
	assert.Equal(t, []string{"Factor", "FactorTail"}, childLabels(tr, outerTerm))
	tail := tr.Node(outerTerm).Children[1]
	assert.Equal(t, []string{"MULT_OP", "Factor", "FactorTail"}, childLabels(tr, tail))
}

func TestLeafFidelity(t *testing.T) {
	inputs := []string{
		"x := 5 .",
		"read a read b sum := a + b * 2 write sum",
		"if a >= b then max := a else max := b fi write max $$",
		"while i < 10 do i := i + 1 od",
		"do n := n - 1 until n <= 0",
		"y := ((a)) / (b - 3.5)",
		"",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			src := lexer.NewSource(input)
			builder := tree.NewBuilder()
			result := Analyze(src, builder)
			require.True(t, result.Ok(), "unexpected error: %v", result.Error())

			// The final EOF belongs to the tree too
			var want []string
			for _, tok := range src.Tokens() {
				want = append(want, tok.Text)
			}
			if diff := cmp.Diff(want, builder.Tree().Lexemes()); diff != "" {
				t.Errorf("leaf lexemes mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, lexer.EOF, src.Current())
		})
	}
}

func TestEpsilonVisibility(t *testing.T) {
	tr, result := ParseString("")
	require.True(t, result.Ok())

	list := single(t, tr, "StmtList")
	assert.Equal(t, []string{tree.EmptyLabel}, childLabels(tr, list))

	// Every tail rule closes with an explicit empty marker
	tr, result = ParseString("x := a + b * c")
	require.True(t, result.Ok())
	for _, label := range []string{"TermTail", "FactorTail", "StmtList"} {
		ids := tr.Find(label)
		require.NotEmpty(t, ids, label)
		last := ids[len(ids)-1]
		assert.Equal(t, []string{tree.EmptyLabel}, childLabels(tr, last), label)
	}

	empties := 0
	tr.Walk(func(id tree.NodeID, _ int) bool {
		if tr.Node(id).Kind == tree.NodeEmpty {
			empties++
		}
		return true
	})
	assert.Equal(t, 4, empties)
}

func TestFailFast(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected lexer.TokenType
		found    lexer.TokenType
		lexeme   string
		consumed []string
		node     string
	}{
		{
			name:     "operator where factor expected",
			input:    "x := 5 + ) 3",
			expected: lexer.LEFT_PAREN,
			found:    lexer.RIGHT_PAREN,
			lexeme:   ")",
			consumed: []string{"x", ":=", "5", "+"},
			node:     "Factor",
		},
		{
			name:     "missing assignment operator",
			input:    "x 5",
			expected: lexer.ASSIGN_OP,
			found:    lexer.NUMBER,
			lexeme:   "5",
			consumed: []string{"x"},
			node:     "stmt",
		},
		{
			name:     "read needs identifier",
			input:    "read 5",
			expected: lexer.ID,
			found:    lexer.NUMBER,
			lexeme:   "5",
			consumed: []string{"read"},
			node:     "stmt",
		},
		{
			name:     "chained relational operator",
			input:    "while a < b < c do od",
			expected: lexer.DO,
			found:    lexer.REL_OP,
			lexeme:   "<",
			consumed: []string{"while", "a", "<", "b"},
			node:     "while_stmt",
		},
		{
			name:     "stray od at top level",
			input:    "x := 1 od",
			expected: lexer.EOF,
			found:    lexer.OD,
			lexeme:   "od",
			consumed: []string{"x", ":=", "1"},
			node:     "Program",
		},
		{
			name:     "end marker in the middle",
			input:    "x := 1 . y := 2",
			expected: lexer.EOF,
			found:    lexer.UNKNOWN,
			lexeme:   ".",
			consumed: []string{"x", ":=", "1"},
			node:     "Program",
		},
		{
			name:     "unclosed parenthesis",
			input:    "write (a + b",
			expected: lexer.RIGHT_PAREN,
			found:    lexer.EOF,
			lexeme:   "",
			consumed: []string{"write", "(", "a", "+", "b"},
			node:     "Factor",
		},
		{
			name:     "do loop with od instead of until",
			input:    "do read x od",
			expected: lexer.UNTIL,
			found:    lexer.OD,
			lexeme:   "od",
			consumed: []string{"do", "read", "x"},
			node:     "do_until_stmt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tree.NewRecorder()
			b := tree.NewBuilder()
			result := Analyze(lexer.NewSource(tt.input), tree.NewTee(b, r))
			require.False(t, result.Ok())

			err := result.Err
			assert.Equal(t, tt.expected, err.Expected)
			assert.Equal(t, tt.found, err.Found)
			assert.Equal(t, tt.lexeme, err.Lexeme)

			// Recorder ids match the tee's, the builder gets its own
			tr := b.Tree()
			require.NotNil(t, tr.Error)
			assert.Equal(t, tt.node, tr.Node(tr.Error.Node).Label)
			if diff := cmp.Diff(tt.consumed, tr.Lexemes()); diff != "" {
				t.Errorf("consumed lexemes mismatch (-want +got):\n%s", diff)
			}

			// Exactly one error, reported before the run closes
			var errorEvents int
			for _, ev := range r.Events {
				if ev.Kind == tree.EventError {
					errorEvents++
				}
			}
			assert.Equal(t, 1, errorEvents)
			n := len(r.Events)
			assert.Equal(t, tree.EventError, r.Events[n-2].Kind)
			assert.Equal(t, tree.EventClose, r.Events[n-1].Kind)
		})
	}
}

func TestKeywordHint(t *testing.T) {
	_, result := ParseString("if x > 0 thn write x fi")
	require.False(t, result.Ok())

	err := result.Err
	assert.Equal(t, lexer.THEN, err.Expected)
	assert.Equal(t, lexer.ID, err.Found)
	assert.Equal(t, "then", err.Hint)
	assert.Equal(t, lexer.Position{Line: 1, Column: 10, Offset: 9}, err.Position)
	assert.Equal(t, `syntax error at 1:10: 'THEN' was expected but 'thn' was found (did you mean "then"?)`, err.Error())
}

func TestUnpositionedSource(t *testing.T) {
	// A source without positions still yields a complete error
	src := &wordSource{words: []lexer.Token{
		{Type: lexer.WRITE, Text: "write"},
	}}
	result := Analyze(src, tree.NewBuilder())
	require.False(t, result.Ok())
	assert.Equal(t, "syntax error: 'LEFT_PAREN' was expected but 'end of input' was found", result.Err.Error())
}

// wordSource is a TokenSource that does not report positions
type wordSource struct {
	words []lexer.Token
	pos   int
}

func (w *wordSource) Current() lexer.TokenType {
	if w.pos >= len(w.words) {
		return lexer.EOF
	}
	return w.words[w.pos].Type
}

func (w *wordSource) Lexeme() string {
	if w.pos >= len(w.words) {
		return ""
	}
	return w.words[w.pos].Text
}

func (w *wordSource) Advance() {
	if w.pos < len(w.words) {
		w.pos++
	}
}

func TestFromWords(t *testing.T) {
	b := tree.NewBuilder()
	result := Analyze(lexer.FromWords("sum", ":=", "sum", "+", "1"), b)
	require.True(t, result.Ok(), "unexpected error: %v", result.Error())
	assert.Equal(t, []string{"sum", ":=", "sum", "+", "1", ""}, b.Tree().Lexemes())
}

func TestDeterminism(t *testing.T) {
	input := "read n while n > 0 do if n / 2 = 0 then write n fi n := n - 1 od"

	first, r1 := ParseString(input)
	second, r2 := ParseString(input)
	require.True(t, r1.Ok())
	require.True(t, r2.Ok())

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	a, b := tree.NewRecorder(), tree.NewRecorder()
	Analyze(lexer.NewSource(input), a)
	Analyze(lexer.NewSource(input), b)
	if diff := cmp.Diff(a.Events, b.Events); diff != "" {
		t.Errorf("non-deterministic events (-first +second):\n%s", diff)
	}
}

func TestTelemetry(t *testing.T) {
	tr, result := ParseString("x := 5 .", WithTelemetry())
	require.True(t, result.Ok())
	require.NotNil(t, result.Telemetry)

	assert.Equal(t, 4, result.Telemetry.TokenCount)
	assert.Equal(t, 17, result.Telemetry.NodeCount)
	assert.Equal(t, tr.Len()-1, result.Telemetry.NodeCount)
	assert.GreaterOrEqual(t, result.Telemetry.ParseTime.Nanoseconds(), int64(0))

	_, result = ParseString("x := 5 .")
	assert.Nil(t, result.Telemetry)
}

func TestTitle(t *testing.T) {
	tr, _ := ParseString("", WithTitle("LOOPS"))
	assert.Equal(t, "LOOPS", tr.Title)
	assert.Equal(t, "LOOPS", tr.Node(tr.Root()).Label)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, result := ParseString("if n < 10 then write n", WithLogger(logger))
	require.False(t, result.Ok())

	out := buf.String()
	assert.Contains(t, out, `level=INFO msg="parse failed" component=parser expected=FI found=EOF`)
	assert.NotContains(t, out, "msg=enter")

	buf.Reset()
	_, result = ParseString("x := 1", WithLogger(logger), WithTrace())
	require.True(t, result.Ok())

	out = buf.String()
	assert.Contains(t, out, "msg=enter component=parser rule=Program lookahead=ID")
	assert.Contains(t, out, "rule=FactorTail lookahead=EOF")
	assert.Contains(t, out, `msg="parse complete"`)
}

func TestResultError(t *testing.T) {
	ok := &Result{}
	assert.NoError(t, ok.Error())
	assert.True(t, ok.Ok())

	failed := &Result{Err: NewSyntaxError(lexer.FI, lexer.EOF, "", tree.NoNode)}
	assert.Error(t, failed.Error())
	assert.False(t, failed.Ok())
}

func TestSymbolNames(t *testing.T) {
	assert.Equal(t, "if_stmt", SymIfStmt.String())
	assert.Equal(t, "FactorTail", SymFactorTail.String())
	assert.Equal(t, "Symbol(?)", Symbol(99).String())
}

func TestDeepNesting(t *testing.T) {
	// Long statement lists must not recurse per statement
	var buf bytes.Buffer
	for i := 0; i < 5000; i++ {
		buf.WriteString("x := x + 1 ")
	}
	tr, result := ParseString(buf.String())
	require.True(t, result.Ok())
	assert.Len(t, tr.Find("stmt"), 5000)
	assert.Len(t, tr.Find("StmtList"), 5001)
}
