package log

import "fmt"

// Diagnostic is one reported problem
type Diagnostic struct {
	Level   LogLevel
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Level, d.Message)
}

// Diagnostics accumulates warnings and errors raised while parsing and reading
// so callers can inspect them after a call returns. Every entry is also
// forwarded to the logger.
type Diagnostics struct {
	logger  *Logger
	entries []Diagnostic
}

func NewDiagnostics(logger *Logger) *Diagnostics {
	if logger == nil {
		logger = Discard()
	}
	return &Diagnostics{logger: logger}
}

func (d *Diagnostics) Logger() *Logger { return d.logger }

// Debug is logged but not recorded
func (d *Diagnostics) Debug(msg string, args ...any) {
	d.logger.Debug(msg, args...)
}

// Warn records an advisory problem, processing continues
func (d *Diagnostics) Warn(msg string, args ...any) {
	d.add(Warn, msg, args...)
}

// Error records a problem that aborted part of a read
func (d *Diagnostics) Error(msg string, args ...any) {
	d.add(Error, msg, args...)
}

func (d *Diagnostics) add(level LogLevel, msg string, args ...any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	d.entries = append(d.entries, Diagnostic{Level: level, Message: msg})
	d.logger.log(level, "%s", msg)
}

func (d *Diagnostics) Entries() []Diagnostic {
	out := make([]Diagnostic, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Diagnostics) Count(level LogLevel) (n int) {
	for _, e := range d.entries {
		if e.Level == level {
			n++
		}
	}
	return
}

func (d *Diagnostics) HasErrors() bool {
	return d.Count(Error) > 0
}

func (d *Diagnostics) Reset() {
	d.entries = d.entries[:0]
}
