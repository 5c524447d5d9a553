package lexer

import "strings"

// Stream is a cursor over a token slice. It is the token source the parser
// reads from: Current and Lexeme are idempotent, Advance moves one token on.
type Stream struct {
	tokens []Token
	pos    int
}

// NewStream wraps tokens in a cursor positioned at the first token
func NewStream(tokens []Token) *Stream {
	return &Stream{tokens: tokens}
}

// NewSource scans input and returns a stream over its tokens
func NewSource(input string, opts ...LexerOpt) *Stream {
	return NewStream(NewLexer(input, opts...).GetTokens())
}

// FromWords classifies pre-split words, one token per word. Empty or blank
// words are skipped; end of input is implied after the last word.
func FromWords(words ...string) *Stream {
	tokens := make([]Token, 0, len(words))
	offset := 0
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		tokens = append(tokens, Token{
			Type:     Classify(w),
			Text:     w,
			Position: Position{Line: 1, Column: offset + 1, Offset: offset},
		})
		offset += len(w) + 1
	}

	// Same rule as the scanner: an end marker only counts in final position
	for i := 0; i < len(tokens)-1; i++ {
		if tokens[i].Type == EOF {
			tokens[i].Type = UNKNOWN
		}
	}
	return NewStream(tokens)
}

// Current returns the type of the lookahead token
func (s *Stream) Current() TokenType {
	return s.current().Type
}

// Lexeme returns the literal text of the lookahead token
func (s *Stream) Lexeme() string {
	return s.current().Text
}

// Position returns the source position of the lookahead token
func (s *Stream) Position() Position {
	return s.current().Position
}

// Token returns the lookahead token
func (s *Stream) Token() Token {
	return s.current()
}

// Advance moves past the lookahead token. Past the end it is a no-op and the
// stream keeps reporting EOF.
func (s *Stream) Advance() {
	if s.pos < len(s.tokens) {
		s.pos++
	}
}

// Consumed returns the tokens advanced past so far
func (s *Stream) Consumed() []Token {
	return s.tokens[:s.pos]
}

// Tokens returns every token of the stream
func (s *Stream) Tokens() []Token {
	return s.tokens
}

func (s *Stream) current() Token {
	if s.pos >= len(s.tokens) {
		// Past the end: report EOF at the last known position
		var pos Position
		if n := len(s.tokens); n > 0 {
			last := s.tokens[n-1]
			pos = last.Position
			pos.Column += len(last.Text)
			pos.Offset += len(last.Text)
		} else {
			pos = Position{Line: 1, Column: 1}
		}
		return Token{Type: EOF, Position: pos}
	}
	return s.tokens[s.pos]
}
