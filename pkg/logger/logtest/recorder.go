// Package logtest captures slog records so tests can assert on warnings and
// errors.
package logtest

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// Capture installs a Recorder as the default logger until the test ends.
func Capture(t testing.TB) *Recorder {
	t.Helper()
	prev := slog.Default()
	rec := &Recorder{}
	slog.SetDefault(slog.New(rec))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return rec
}

func (r *Recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *Recorder) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]any, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Level: record.Level, Message: record.Message, Attrs: attrs})
	return nil
}

func (r *Recorder) WithAttrs([]slog.Attr) slog.Handler { return r }

func (r *Recorder) WithGroup(string) slog.Handler { return r }

func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}

// Count returns how many records were logged at exactly level.
func (r *Recorder) Count(level slog.Level) int {
	n := 0
	for _, rec := range r.Records() {
		if rec.Level == level {
			n++
		}
	}
	return n
}
