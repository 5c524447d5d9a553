package lexer

import (
	"fmt"
	"regexp"
	"sort"
)

// TokenType represents the kind of a token in the statement language.
//
// The set is closed: every lexeme the lexer produces is classified into exactly
// one of these kinds. Operator classes (ADD_OP, MULT_OP, REL_OP) group several
// spellings under one kind since the grammar never distinguishes them.
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	UNKNOWN

	// Identifiers and literals
	ID     // x, sum, count
	NUMBER // 42, 3.14

	// Keywords
	READ  // read
	WRITE // write
	IF    // if
	THEN  // then
	ELSE  // else
	FI    // fi
	WHILE // while
	DO    // do
	OD    // od
	UNTIL // until

	// Operators
	ASSIGN_OP   // :=
	ADD_OP      // + -
	MULT_OP     // * /
	REL_OP      // < > <= >= = !=
	LEFT_PAREN  // (
	RIGHT_PAREN // )
)

// Pre-computed token name lookup for fast debugging
var tokenNames = [...]string{
	EOF:         "EOF",
	UNKNOWN:     "UNKNOWN",
	ID:          "ID",
	NUMBER:      "NUMBER",
	READ:        "READ",
	WRITE:       "WRITE",
	IF:          "IF",
	THEN:        "THEN",
	ELSE:        "ELSE",
	FI:          "FI",
	WHILE:       "WHILE",
	DO:          "DO",
	OD:          "OD",
	UNTIL:       "UNTIL",
	ASSIGN_OP:   "ASSIGN_OP",
	ADD_OP:      "ADD_OP",
	MULT_OP:     "MULT_OP",
	REL_OP:      "REL_OP",
	LEFT_PAREN:  "LEFT_PAREN",
	RIGHT_PAREN: "RIGHT_PAREN",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && int(t) >= 0 {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsKeyword reports whether t is one of the reserved words.
func (t TokenType) IsKeyword() bool {
	return t >= READ && t <= UNTIL
}

// Spellings lists the literal spellings of every fixed-spelling kind.
// ID and NUMBER are classified by pattern instead.
var Spellings = map[TokenType][]string{
	READ:        {"read"},
	WRITE:       {"write"},
	IF:          {"if"},
	THEN:        {"then"},
	ELSE:        {"else"},
	FI:          {"fi"},
	WHILE:       {"while"},
	DO:          {"do"},
	OD:          {"od"},
	UNTIL:       {"until"},
	ASSIGN_OP:   {":="},
	ADD_OP:      {"+", "-"},
	MULT_OP:     {"*", "/"},
	REL_OP:      {"<", ">", "<=", ">=", "=", "!="},
	LEFT_PAREN:  {"("},
	RIGHT_PAREN: {")"},
	EOF:         {".", "$$"},
}

var (
	// spellingTable is Spellings inverted, built once at init
	spellingTable map[string]TokenType

	// keywordList holds keyword spellings in a stable order for suggestions
	keywordList []string

	reNumber     = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func init() {
	spellingTable = make(map[string]TokenType)
	for typ, spellings := range Spellings {
		for _, s := range spellings {
			spellingTable[s] = typ
		}
		if typ.IsKeyword() {
			keywordList = append(keywordList, spellings...)
		}
	}
	sort.Strings(keywordList)
}

// Classify resolves a single lexeme to its token type.
//
// An empty lexeme is end of input. Fixed spellings are looked up first so that
// keywords win over the identifier pattern.
func Classify(lexeme string) TokenType {
	if lexeme == "" {
		return EOF
	}
	if typ, ok := spellingTable[lexeme]; ok {
		return typ
	}
	if reNumber.MatchString(lexeme) {
		return NUMBER
	}
	if reIdentifier.MatchString(lexeme) {
		return ID
	}
	return UNKNOWN
}

// Token represents a lexical token
type Token struct {
	Type     TokenType
	Text     string
	Position Position
}

// Position represents a position in the source code
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func (t Token) String() string {
	if t.Type == EOF && t.Text == "" {
		return "EOF"
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Text)
}
