package parser

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/treeparse/pkgs/lexer"
	"github.com/aledsdavies/treeparse/pkgs/tree"
)

// SyntaxError is the single error the grammar engine produces: the lookahead
// token did not have the kind the chosen production required.
type SyntaxError struct {
	Expected lexer.TokenType // Kind the production required
	Found    lexer.TokenType // Kind of the lookahead token
	Lexeme   string          // Literal text of the lookahead token
	Position lexer.Position  // Zero when the source cannot report positions
	Node     tree.NodeID     // Node under which the mismatch was detected
	Hint     string          // Optional "did you mean" keyword
}

// Error formats the syntax error as a single line
func (e *SyntaxError) Error() string {
	var b strings.Builder
	b.WriteString("syntax error")
	if e.Position.Line > 0 {
		fmt.Fprintf(&b, " at %s", e.Position)
	}
	fmt.Fprintf(&b, ": '%s' was expected but '%s' was found", e.Expected, e.found())
	if e.Hint != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Hint)
	}
	return b.String()
}

// AtEOF reports whether the input ended before the production was complete
func (e *SyntaxError) AtEOF() bool {
	return e.Found == lexer.EOF
}

func (e *SyntaxError) found() string {
	if e.Found == lexer.EOF && e.Lexeme == "" {
		return "end of input"
	}
	return e.Lexeme
}

// NewSyntaxError creates a SyntaxError for a mismatch at the lookahead token
func NewSyntaxError(expected lexer.TokenType, found lexer.TokenType, lexeme string, node tree.NodeID) *SyntaxError {
	err := &SyntaxError{
		Expected: expected,
		Found:    found,
		Lexeme:   lexeme,
		Node:     node,
	}
	if found == lexer.ID || found == lexer.UNKNOWN {
		if kw, ok := lexer.SuggestKeyword(lexeme); ok && expected.IsKeyword() {
			err.Hint = kw
		}
	}
	return err
}
