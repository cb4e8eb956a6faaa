// Package logging builds the daemon's slog.Logger.
//
// Without a log file, records below error go to stdout and errors go to
// stderr. With a log file, records go to stderr and are appended to the file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
)

// LevelTrace sits below Debug. The arbiter's per-tick output uses it.
const LevelTrace slog.Level = slog.LevelDebug - 4

var levels = map[string]slog.Level{
	"trace": LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	if l, ok := levels[s]; ok {
		return l
	}
	return slog.LevelInfo
}

// nameTrace prints LevelTrace as TRACE rather than DEBUG-4.
func nameTrace(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

// route is one destination of a Router, taking levels in [min, max].
type route struct {
	min, max slog.Level
	h        slog.Handler
}

// Router sends each record to every route whose level band contains it.
type Router struct {
	routes []route
}

func (r Router) Enabled(ctx context.Context, level slog.Level) bool {
	for _, rt := range r.routes {
		if level >= rt.min && level <= rt.max && rt.h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (r Router) Handle(ctx context.Context, rec slog.Record) error {
	var first error
	for _, rt := range r.routes {
		if rec.Level < rt.min || rec.Level > rt.max || !rt.h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := rt.h.Handle(ctx, rec.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r Router) WithAttrs(attrs []slog.Attr) slog.Handler {
	return r.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (r Router) WithGroup(name string) slog.Handler {
	return r.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (r Router) each(fn func(slog.Handler) slog.Handler) Router {
	out := Router{routes: make([]route, len(r.routes))}
	for i, rt := range r.routes {
		out.routes[i] = route{min: rt.min, max: rt.max, h: fn(rt.h)}
	}
	return out
}

func text(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: nameTrace})
}

// New builds a logger writing to the given streams. A nil file selects the
// stdout/stderr split.
func New(level slog.Level, stdout, stderr, file io.Writer) *slog.Logger {
	const top = slog.Level(math.MaxInt)
	if file == nil {
		return slog.New(Router{routes: []route{
			{min: level, max: slog.LevelError - 1, h: text(stdout, level)},
			{min: slog.LevelError, max: top, h: text(stderr, level)},
		}})
	}
	return slog.New(Router{routes: []route{
		{min: level, max: top, h: text(stderr, level)},
		{min: level, max: top, h: text(file, level)},
	}})
}

// SetupLogger builds the process logger. The returned closers must be closed
// on exit.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(logLevel)
	if logFile == "" {
		return New(level, os.Stdout, os.Stderr, nil), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(level, os.Stdout, os.Stderr, f), []io.Closer{f}, nil
}
