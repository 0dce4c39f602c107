package classify

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/routinely/cli/internal/interfaces"
	"go.uber.org/zap"
)

// ZapSink logs diagnostic records as structured error entries
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink creates a sink writing to log
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapSink{log: log}
}

func (s *ZapSink) Record(_ context.Context, r interfaces.DiagnosticRecord) {
	fields := []zap.Field{
		zap.Int("status", r.Status),
		zap.String("statusText", r.StatusText),
		zap.String("message", r.Message),
		zap.String("code", r.Code),
		zap.String("url", r.URL),
		zap.String("requestId", r.RequestID),
	}
	if r.Data != nil {
		fields = append(fields, zap.Any("data", r.Data))
	}
	if r.Stack != "" {
		fields = append(fields, zap.String("stack", r.Stack))
	}
	if r.Raw != nil {
		fields = append(fields, zap.Error(r.Raw))
	}
	s.log.Error("Request failed", fields...)
}

// MemorySink keeps records in memory
type MemorySink struct {
	mu      sync.Mutex
	records []interfaces.DiagnosticRecord
}

func (s *MemorySink) Record(_ context.Context, r interfaces.DiagnosticRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

// Records returns a copy of everything recorded so far
func (s *MemorySink) Records() []interfaces.DiagnosticRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]interfaces.DiagnosticRecord, len(s.records))
	copy(out, s.records)
	return out
}

// NopSink discards records
type NopSink struct{}

func (NopSink) Record(context.Context, interfaces.DiagnosticRecord) {}

// ConsoleNotifier prints messages in red to a terminal
type ConsoleNotifier struct {
	out io.Writer
	c   *color.Color
}

// NewConsoleNotifier creates a notifier writing to out, or stderr when out is nil
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleNotifier{out: out, c: color.New(color.FgRed, color.Bold)}
}

func (n *ConsoleNotifier) Notify(message string) {
	n.c.Fprintln(n.out, "✖ "+message)
}

// NopNotifier discards messages
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}
