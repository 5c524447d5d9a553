package lexer

import (
	"log/slog"
	"unicode/utf8"
)

// LexerOpt represents a lexer configuration option
type LexerOpt func(*LexerConfig)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	telemetry bool
	logger    *slog.Logger
}

// WithTelemetry enables per-type token counts
func WithTelemetry() LexerOpt {
	return func(c *LexerConfig) {
		c.telemetry = true
	}
}

// WithLogger routes debug tracing to logger
func WithLogger(logger *slog.Logger) LexerOpt {
	return func(c *LexerConfig) {
		c.logger = logger
	}
}

// Character class tables for the ASCII fast path
var (
	isWhitespace [128]bool
	isDigit      [128]bool
	isIdentStart [128]bool
	isIdentPart  [128]bool
)

func init() {
	for _, ch := range " \t\r\n\f\v" {
		isWhitespace[ch] = true
	}
	for ch := '0'; ch <= '9'; ch++ {
		isDigit[ch] = true
		isIdentPart[ch] = true
	}
	for ch := 'a'; ch <= 'z'; ch++ {
		isIdentStart[ch] = true
		isIdentPart[ch] = true
	}
	for ch := 'A'; ch <= 'Z'; ch++ {
		isIdentStart[ch] = true
		isIdentPart[ch] = true
	}
	isIdentStart['_'] = true
	isIdentPart['_'] = true
}

// Lexer splits source text into lexemes and classifies each one.
//
// The scanner only decides where a lexeme starts and ends; the kind always
// comes from Classify so the spelling table stays the single source of truth.
type Lexer struct {
	input    []byte
	position int
	line     int
	column   int
	done     bool

	telemetry map[TokenType]int // nil when disabled
	logger    *slog.Logger
}

// NewLexer creates a new lexer instance with optional configuration
func NewLexer(input string, opts ...LexerOpt) *Lexer {
	config := &LexerConfig{}
	for _, opt := range opts {
		opt(config)
	}

	lexer := &Lexer{logger: config.logger}
	if config.telemetry {
		lexer.telemetry = make(map[TokenType]int)
	}
	if lexer.logger != nil {
		lexer.logger = lexer.logger.With(slog.String("component", "lexer"))
	}

	lexer.Init([]byte(input))
	return lexer
}

// Init resets the lexer with new input (following Go scanner pattern)
func (l *Lexer) Init(input []byte) {
	l.input = input
	l.position = 0
	l.line = 1
	l.column = 1
	l.done = false

	for k := range l.telemetry {
		delete(l.telemetry, k)
	}
}

// TokenCounts returns per-type token counts, or nil when telemetry is off
func (l *Lexer) TokenCounts() map[TokenType]int {
	if l.telemetry == nil {
		return nil
	}

	result := make(map[TokenType]int, len(l.telemetry))
	for k, v := range l.telemetry {
		result[k] = v
	}
	return result
}

// NextToken returns the next token. Once end of input has been reached it
// keeps returning EOF tokens with empty text.
func (l *Lexer) NextToken() Token {
	token := l.lexToken()
	if l.telemetry != nil {
		l.telemetry[token.Type]++
	}
	if l.logger != nil {
		l.logger.Debug("token",
			slog.String("type", token.Type.String()),
			slog.String("text", token.Text),
			slog.String("pos", token.Position.String()))
	}
	return token
}

// GetTokens returns all remaining tokens up to and including the first EOF
func (l *Lexer) GetTokens() []Token {
	var tokens []Token
	for {
		token := l.NextToken()
		tokens = append(tokens, token)
		if token.Type == EOF {
			break
		}
	}
	return tokens
}

// lexToken performs the actual tokenization work
func (l *Lexer) lexToken() Token {
	l.skipWhitespace()

	if l.done || l.position >= len(l.input) {
		l.done = true
		return Token{Type: EOF, Position: l.pos()}
	}

	start := l.pos()
	startPos := l.position
	ch := l.currentChar()

	switch {
	case ch < 128 && isIdentStart[ch]:
		l.readWhile(isIdentPart)
	case ch < 128 && isDigit[ch]:
		l.lexNumber()
	default:
		l.lexSymbol(ch)
	}

	text := string(l.input[startPos:l.position])
	typ := Classify(text)

	// An end marker only ends the input when nothing but whitespace follows it
	if typ == EOF {
		l.skipWhitespace()
		if l.position < len(l.input) {
			typ = UNKNOWN
		} else {
			l.done = true
		}
	}

	return Token{Type: typ, Text: text, Position: start}
}

// lexSymbol consumes one operator or punctuation lexeme
func (l *Lexer) lexSymbol(ch byte) {
	switch ch {
	case ':', '<', '>', '!':
		l.advanceChar()
		if l.currentChar() == '=' {
			l.advanceChar()
		}
	case '$':
		l.advanceChar()
		if l.currentChar() == '$' {
			l.advanceChar()
		}
	default:
		l.advanceChar()
	}
}

// lexNumber reads digits with an optional fractional part
func (l *Lexer) lexNumber() {
	l.readWhile(isDigit)
	next := l.peekChar(1)
	if l.currentChar() == '.' && next < 128 && isDigit[next] {
		l.advanceChar() // consume '.'
		l.readWhile(isDigit)
	}
}

func (l *Lexer) readWhile(class [128]bool) {
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch >= 128 || !class[ch] {
			break
		}
		l.advanceChar()
	}
}

// skipWhitespace skips whitespace characters including newlines
func (l *Lexer) skipWhitespace() {
	l.readWhile(isWhitespace)
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

// currentChar returns the current character being examined (ASCII fast path)
func (l *Lexer) currentChar() byte {
	if l.position >= len(l.input) {
		return 0 // EOF
	}
	return l.input[l.position]
}

// peekChar returns the character at offset from current position without advancing
func (l *Lexer) peekChar(offset int) byte {
	pos := l.position + offset
	if pos >= len(l.input) {
		return 0 // EOF
	}
	return l.input[pos]
}

// advanceChar moves to the next character, handling Unicode for position tracking only
func (l *Lexer) advanceChar() {
	if l.position >= len(l.input) {
		return
	}

	ch := l.input[l.position]
	if ch < 128 {
		if ch == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.position++
		return
	}

	_, size := utf8.DecodeRune(l.input[l.position:])
	if size <= 0 {
		size = 1 // Invalid UTF-8, treat as single byte
	}

	l.position += size
	l.column++
}
