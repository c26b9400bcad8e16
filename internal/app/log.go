package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// onceKey is the attribute that marks a record as worth logging only once
// per process for the given value.
const onceKey = "once"

// tabHandler formats log records as:
//
//	<timestamp>\t<level>\t<opID>\t<message>\t<key=value ...>
type tabHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler
	opID  string
	attrs []slog.Attr
}

func newTabHandler(w io.Writer, level slog.Leveler, opID string) *tabHandler {
	return &tabHandler{w: w, mu: &sync.Mutex{}, level: level, opID: opID}
}

func (h *tabHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *tabHandler) Handle(_ context.Context, r slog.Record) error {
	buf := fmt.Appendf(nil, "%s\t%s\t%s\t%s",
		r.Time.UTC().Format("2006-01-02T15:04:05Z"), r.Level, h.opID, r.Message)
	for _, a := range h.attrs {
		buf = fmt.Appendf(buf, "\t%s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = fmt.Appendf(buf, "\t%s=%v", a.Key, a.Value)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *tabHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &h2
}

func (h *tabHandler) WithGroup(string) slog.Handler { return h }

// teeHandler sends each record to every handler that accepts its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// dedupHandler drops a record carrying a "once" attribute whose value has
// been logged before. The attribute itself is not written. A "once" given to
// WithAttrs applies to every record of the derived handler.
type dedupHandler struct {
	next slog.Handler
	mu   *sync.Mutex
	seen map[string]bool
	once string
}

func newDedupHandler(next slog.Handler) *dedupHandler {
	return &dedupHandler{next: next, mu: &sync.Mutex{}, seen: make(map[string]bool)}
}

func (h *dedupHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *dedupHandler) Handle(ctx context.Context, r slog.Record) error {
	key, found := h.once, h.once != ""
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == onceKey {
			key, found = a.Value.String(), true
			return true
		}
		out.AddAttrs(a)
		return true
	})

	if found {
		h.mu.Lock()
		dup := h.seen[key]
		h.seen[key] = true
		h.mu.Unlock()
		if dup {
			return nil
		}
	}
	return h.next.Handle(ctx, out)
}

func (h *dedupHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	once := h.once
	rest := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == onceKey {
			once = a.Value.String()
			continue
		}
		rest = append(rest, a)
	}
	return &dedupHandler{next: h.next.WithAttrs(rest), mu: h.mu, seen: h.seen, once: once}
}

func (h *dedupHandler) WithGroup(name string) slog.Handler {
	return &dedupHandler{next: h.next.WithGroup(name), mu: h.mu, seen: h.seen, once: h.once}
}

// parseLevel maps a config log level to slog. Empty means info.
func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// newLogger writes records at level and above to a rotated logDir/tagspace.log,
// and warnings and errors to stderr as well.
func newLogger(logDir, level, opID string) (*slog.Logger, io.Closer, error) {
	l, err := parseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "tagspace.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     90, // days
	}
	handler := newDedupHandler(teeHandler{
		newTabHandler(file, l, opID),
		newTabHandler(os.Stderr, slog.LevelWarn, opID),
	})
	return slog.New(handler), file, nil
}

// slogAdapter wraps *slog.Logger to satisfy the tagspace.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
