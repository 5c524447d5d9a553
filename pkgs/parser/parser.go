package parser

import (
	"log/slog"
	"time"

	"github.com/aledsdavies/treeparse/pkgs/lexer"
	"github.com/aledsdavies/treeparse/pkgs/tree"
)

// DefaultTitle is the run title used when none is configured
const DefaultTitle = "PARSE TREE"

// TokenSource is the lookahead cursor the parser consumes.
// Current and Lexeme must not advance; Advance past the end keeps
// reporting lexer.EOF.
type TokenSource interface {
	Current() lexer.TokenType
	Lexeme() string
	Advance()
}

// positioner is implemented by sources that know where their tokens are
type positioner interface {
	Position() lexer.Position
}

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// ParserConfig holds parser configuration
type ParserConfig struct {
	title     string
	logger    *slog.Logger
	telemetry bool
	trace     bool
}

// WithTitle sets the title passed to the sink's OpenRun
func WithTitle(title string) ParserOpt {
	return func(c *ParserConfig) {
		c.title = title
	}
}

// WithLogger sets the logger for run summaries and tracing
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		c.logger = logger
	}
}

// WithTelemetry enables token and node counts plus timing
func WithTelemetry() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = true
	}
}

// WithTrace logs every rule entry at debug level
func WithTrace() ParserOpt {
	return func(c *ParserConfig) {
		c.trace = true
	}
}

// ParseTelemetry holds counters for one run (nil if disabled)
type ParseTelemetry struct {
	TokenCount int           // Tokens consumed, including the final EOF
	NodeCount  int           // Nodes handed to the sink, excluding the run root
	ParseTime  time.Duration // Wall time spent in the grammar
}

// Result is the outcome of one run: parsed when Err is nil, failed otherwise
type Result struct {
	Err       *SyntaxError
	Telemetry *ParseTelemetry
}

// Ok reports whether the input was accepted
func (r *Result) Ok() bool {
	return r.Err == nil
}

// Error returns the syntax error as an error value, or nil when parsed.
// It never returns a typed nil.
func (r *Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// Analyze parses src from the start symbol and drives sink with the
// derivation. It is the only recovery boundary: a syntax error is reported to
// the sink and returned in the Result, and the run is always closed.
func Analyze(src TokenSource, sink tree.Sink, opts ...ParserOpt) *Result {
	config := &ParserConfig{title: DefaultTitle}
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &parser{
		src:    src,
		sink:   sink,
		trace:  config.trace,
		logger: logger.With(slog.String("component", "parser")),
	}

	var start time.Time
	if config.telemetry {
		start = time.Now()
	}

	// Header, start rule, footer
	root := sink.OpenRun(config.title)
	err := p.program(root)
	if err != nil {
		sink.ReportSyntaxError(err.Error(), err.Node)
	}
	sink.CloseRun()

	result := &Result{Err: err}
	if config.telemetry {
		result.Telemetry = &ParseTelemetry{
			TokenCount: p.consumed,
			NodeCount:  p.nodes,
			ParseTime:  time.Since(start),
		}
	}

	if err != nil {
		p.logger.Info("parse failed",
			slog.String("expected", err.Expected.String()),
			slog.String("found", err.Found.String()),
			slog.String("lexeme", err.Lexeme),
			slog.Int("consumed", p.consumed))
	} else {
		p.logger.Debug("parse complete",
			slog.Int("tokens", p.consumed),
			slog.Int("nodes", p.nodes))
	}

	return result
}

// ParseString is a convenience wrapper that scans input and builds an arena tree
func ParseString(input string, opts ...ParserOpt) (*tree.Tree, *Result) {
	builder := tree.NewBuilder()
	result := Analyze(lexer.NewSource(input), builder, opts...)
	return builder.Tree(), result
}

// parser is the internal parser state
type parser struct {
	src    TokenSource
	sink   tree.Sink
	logger *slog.Logger
	trace  bool

	consumed int
	nodes    int
}

// open creates the node of a nonterminal invocation. Every rule calls it
// before it consumes a token or descends.
func (p *parser) open(parent tree.NodeID, sym Symbol) tree.NodeID {
	if p.trace {
		p.logger.Debug("enter",
			slog.String("rule", sym.String()),
			slog.String("lookahead", p.src.Current().String()))
	}
	p.nodes++
	return p.sink.AddNonterminal(parent, sym.String())
}

// match consumes the lookahead if it has the expected kind, attaching it as a
// terminal leaf under parent. It is the only place parsing can fail.
func (p *parser) match(parent tree.NodeID, expected lexer.TokenType) *SyntaxError {
	found := p.src.Current()
	if found != expected {
		return p.mismatch(parent, expected)
	}

	leaf := p.sink.AddNonterminal(parent, found.String())
	p.sink.AddTerminal(leaf, p.src.Lexeme())
	p.src.Advance()
	p.nodes++
	p.consumed++
	return nil
}

// empty records the choice of an epsilon alternative
func (p *parser) empty(parent tree.NodeID) {
	p.nodes++
	p.sink.AddEmpty(parent)
}

func (p *parser) mismatch(node tree.NodeID, expected lexer.TokenType) *SyntaxError {
	err := NewSyntaxError(expected, p.src.Current(), p.src.Lexeme(), node)
	if pos, ok := p.src.(positioner); ok {
		err.Position = pos.Position()
	}
	return err
}
