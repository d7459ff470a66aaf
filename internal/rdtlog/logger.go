// Package rdtlog provides the small structured logger the trainer and
// inference driver write progress and timing through, following
// kitelog's Logger/Interface split: a thin wrapper over the standard
// logger plus an attached Durations ledger for per-phase timing.
package rdtlog

import (
	"fmt"
	"log"
	"os"
)

var flags = log.LstdFlags | log.Lmicroseconds

// Logger wraps a standard *log.Logger with an attached duration
// ledger; Verbose gates the per-node chatter the trainer emits when
// the verbose knob is set, while depth-transition and summary lines
// always print.
type Logger struct {
	Default   *log.Logger
	Durations Durations
	Verbose   bool
}

// New builds a logger writing to stderr, the teacher's own default.
func New(verbose bool) *Logger {
	return &Logger{
		Default: log.New(os.Stderr, "", flags),
		Verbose: verbose,
	}
}

// Interface encapsulates the subset of Logger the duration ledger
// needs to flush itself through, matching kitelog's shape.
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.Default.Output(2, fmt.Sprintf(format, v...))
}

func (l *Logger) Println(v ...interface{}) {
	l.Default.Output(2, fmt.Sprintln(v...))
}

// Debugf only prints when the logger is in verbose mode, used for the
// per-node chatter carried over from the original trainer's verbose
// block.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if !l.Verbose {
		return
	}
	l.Printf(format, v...)
}
