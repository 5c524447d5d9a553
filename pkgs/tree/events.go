package tree

import (
	"log/slog"
)

// EventKind represents the type of sink event
type EventKind uint8

const (
	EventOpen        EventKind = iota // OpenRun
	EventNonterminal                  // AddNonterminal
	EventTerminal                     // AddTerminal
	EventEmpty                        // AddEmpty
	EventError                        // ReportSyntaxError
	EventClose                        // CloseRun
)

var eventKindNames = [...]string{
	EventOpen:        "open",
	EventNonterminal: "nonterminal",
	EventTerminal:    "terminal",
	EventEmpty:       "empty",
	EventError:       "error",
	EventClose:       "close",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is one sink call. Node is the node created or targeted by the call,
// Text is the label, lexeme or error message.
type Event struct {
	Kind EventKind
	Node NodeID
	Text string
}

// Recorder is a Sink that keeps the flat event log of a run
type Recorder struct {
	Events []Event
	next   NodeID
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// OpenRun clears the log and records the run header
func (r *Recorder) OpenRun(title string) NodeID {
	r.Events = r.Events[:0]
	r.next = 0
	id := r.alloc()
	r.Events = append(r.Events, Event{EventOpen, id, title})
	return id
}

// AddNonterminal records a nonterminal and returns its id
func (r *Recorder) AddNonterminal(parent NodeID, label string) NodeID {
	id := r.alloc()
	r.Events = append(r.Events, Event{EventNonterminal, id, label})
	return id
}

// AddTerminal records the lexeme of a leaf
func (r *Recorder) AddTerminal(node NodeID, lexeme string) {
	r.Events = append(r.Events, Event{EventTerminal, node, lexeme})
}

// AddEmpty records an epsilon marker
func (r *Recorder) AddEmpty(parent NodeID) {
	// Empty markers occupy an id so ids line up with Builder arenas
	id := r.alloc()
	r.Events = append(r.Events, Event{EventEmpty, id, EmptyLabel})
}

// ReportSyntaxError records the error message against node
func (r *Recorder) ReportSyntaxError(message string, node NodeID) {
	r.Events = append(r.Events, Event{EventError, node, message})
}

// CloseRun records the end of the run
func (r *Recorder) CloseRun() {
	r.Events = append(r.Events, Event{EventClose, NoNode, ""})
}

func (r *Recorder) alloc() NodeID {
	id := r.next
	r.next++
	return id
}

// Tee fans every sink call out to several sinks. Each sink keeps its own id
// space; Tee hands out its own ids and translates them per sink.
type Tee struct {
	sinks []Sink
	ids   [][]NodeID // ids[i][teeID] is the id sinks[i] returned
}

// NewTee creates a sink forwarding to sinks in order
func NewTee(sinks ...Sink) *Tee {
	return &Tee{sinks: sinks, ids: make([][]NodeID, len(sinks))}
}

// OpenRun opens a run on every sink
func (t *Tee) OpenRun(title string) NodeID {
	for i, s := range t.sinks {
		t.ids[i] = append(t.ids[i][:0], s.OpenRun(title))
	}
	return 0
}

// AddNonterminal adds the node to every sink and returns the tee id
func (t *Tee) AddNonterminal(parent NodeID, label string) NodeID {
	var id NodeID
	for i, s := range t.sinks {
		child := s.AddNonterminal(t.ids[i][parent], label)
		id = NodeID(len(t.ids[i]))
		t.ids[i] = append(t.ids[i], child)
	}
	return id
}

// AddTerminal forwards the lexeme to every sink
func (t *Tee) AddTerminal(node NodeID, lexeme string) {
	for i, s := range t.sinks {
		s.AddTerminal(t.ids[i][node], lexeme)
	}
}

// AddEmpty forwards an epsilon marker to every sink
func (t *Tee) AddEmpty(parent NodeID) {
	for i, s := range t.sinks {
		s.AddEmpty(t.ids[i][parent])
	}
}

// ReportSyntaxError forwards the error to every sink
func (t *Tee) ReportSyntaxError(message string, node NodeID) {
	for i, s := range t.sinks {
		s.ReportSyntaxError(message, t.ids[i][node])
	}
}

// CloseRun closes the run on every sink
func (t *Tee) CloseRun() {
	for _, s := range t.sinks {
		s.CloseRun()
	}
}

// LogSink is a Sink that writes one debug record per event
type LogSink struct {
	logger *slog.Logger
	next   NodeID
}

// NewLogSink creates a sink logging through logger
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With(slog.String("component", "sink"))}
}

// OpenRun logs the run title
func (l *LogSink) OpenRun(title string) NodeID {
	l.next = 1
	l.logger.Debug("open run", slog.String("title", title))
	return 0
}

// AddNonterminal logs the node with its parent
func (l *LogSink) AddNonterminal(parent NodeID, label string) NodeID {
	id := l.next
	l.next++
	l.logger.Debug("node",
		slog.Int("id", int(id)),
		slog.Int("parent", int(parent)),
		slog.String("label", label))
	return id
}

// AddTerminal logs the leaf lexeme
func (l *LogSink) AddTerminal(node NodeID, lexeme string) {
	l.logger.Debug("leaf", slog.Int("id", int(node)), slog.String("lexeme", lexeme))
}

// AddEmpty logs an epsilon marker
func (l *LogSink) AddEmpty(parent NodeID) {
	l.next++
	l.logger.Debug("empty", slog.Int("parent", int(parent)))
}

// ReportSyntaxError logs the error message
func (l *LogSink) ReportSyntaxError(message string, node NodeID) {
	l.logger.Debug("syntax error", slog.Int("node", int(node)), slog.String("message", message))
}

// CloseRun logs the node count of the run
func (l *LogSink) CloseRun() {
	l.logger.Debug("close run", slog.Int("nodes", int(l.next)))
}
