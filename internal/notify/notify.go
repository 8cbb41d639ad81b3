// Package notify carries user-facing notifications out of the data layers.
// The HTTP adapter and mutation helpers emit through a Notifier; the CLI
// uses the writer implementation, the TUI swaps in its own status line.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Notifier surfaces messages the user must see, independent of log level.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Writer prints notifications to an io.Writer (stdout for the CLI) and
// mirrors them to the logger.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	log *zap.Logger
}

// NewWriter builds a Writer notifier. A nil logger is replaced by a no-op.
func NewWriter(out io.Writer, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{out: out, log: log}
}

func (w *Writer) emit(prefix, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "%s %s\n", prefix, msg)
}

// Success reports a completed operation.
func (w *Writer) Success(msg string) {
	w.log.Info("notify", zap.String("kind", "success"), zap.String("msg", msg))
	w.emit("✔", msg)
}

// Error reports a failed operation.
func (w *Writer) Error(msg string) {
	w.log.Warn("notify", zap.String("kind", "error"), zap.String("msg", msg))
	w.emit("✖", msg)
}

// Info reports a neutral status message.
func (w *Writer) Info(msg string) {
	w.log.Info("notify", zap.String("kind", "info"), zap.String("msg", msg))
	w.emit("•", msg)
}

type nop struct{}

func (nop) Success(string) {}
func (nop) Error(string)   {}
func (nop) Info(string)    {}

// Nop returns a notifier that discards everything. Library default.
func Nop() Notifier { return nop{} }

// Spy records notifications for tests.
type Spy struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
	Infos     []string
}

func (s *Spy) Success(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Successes = append(s.Successes, msg)
}

func (s *Spy) Error(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, msg)
}

func (s *Spy) Info(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Infos = append(s.Infos, msg)
}

// LastError returns the most recent error notification, if any.
func (s *Spy) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Errors) == 0 {
		return ""
	}
	return s.Errors[len(s.Errors)-1]
}
