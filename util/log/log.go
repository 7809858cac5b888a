package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"
)

/*
Package log wraps log/slog with printf and key-value helpers that pick up
tags stored on the context. Tags are attached with AddTags, usually once per
input file or command, and are appended to every record logged through that
context.
*/

////////////////////////////////////////////////////////////////////////////////

type contextKey int

const (
	logTagKey contextKey = iota
)

// Configure installs a default slog handler writing to w. Debug records are
// emitted only when verbose is set. When json is set records are written as
// JSON lines, otherwise as logfmt text.
func Configure(w io.Writer, verbose bool, json bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// AddTags returns a context carrying the given key-value pairs in addition to
// any already present.
func AddTags(ctx context.Context, kvs ...any) context.Context {
	if len(kvs)%2 != 0 {
		panic("log: AddTags requires an even number of arguments")
	}
	tags := ctx.Value(logTagKey)
	if tags == nil {
		tags = []any{}
	}
	existing := tags.([]any)
	merged := make([]any, 0, len(existing)+len(kvs))
	merged = append(merged, existing...)
	merged = append(merged, kvs...)
	return context.WithValue(ctx, logTagKey, merged)
}

func fromContext(ctx context.Context) []any {
	tags, _ := ctx.Value(logTagKey).([]any)
	return tags
}

func levelf(ctx context.Context, level slog.Level, format string, args ...any) {
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, args...), pcs[0])
	tags := fromContext(ctx)
	for i := 0; i < len(tags); i += 2 {
		r.Add(tags[i].(string), tags[i+1])
	}
	handler := slog.Default().Handler()
	if handler.Enabled(ctx, level) {
		if err := handler.Handle(ctx, r); err != nil {
			slog.ErrorContext(ctx, "error handling log record", "error", err)
		}
	}
}

func Infof(ctx context.Context, format string, args ...any) {
	levelf(ctx, slog.LevelInfo, format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	levelf(ctx, slog.LevelError, format, args...)
}

func Debugf(ctx context.Context, format string, args ...any) {
	levelf(ctx, slog.LevelDebug, format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	levelf(ctx, slog.LevelWarn, format, args...)
}

func levelw(ctx context.Context, level slog.Level, msg string, keyvals ...any) {
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	for i := 0; i < len(keyvals); i += 2 {
		r.Add(keyvals[i].(string), keyvals[i+1])
	}
	tags := fromContext(ctx)
	for i := 0; i < len(tags); i += 2 {
		r.Add(tags[i].(string), tags[i+1])
	}
	handler := slog.Default().Handler()
	if handler.Enabled(ctx, level) {
		if err := handler.Handle(ctx, r); err != nil {
			slog.ErrorContext(ctx, "error handling log record", "error", err)
		}
	}
}

func Infow(ctx context.Context, msg string, keyvals ...any) {
	levelw(ctx, slog.LevelInfo, msg, keyvals...)
}

func Errorw(ctx context.Context, msg string, keyvals ...any) {
	levelw(ctx, slog.LevelError, msg, keyvals...)
}

func Debugw(ctx context.Context, msg string, keyvals ...any) {
	levelw(ctx, slog.LevelDebug, msg, keyvals...)
}

func Warnw(ctx context.Context, msg string, keyvals ...any) {
	levelw(ctx, slog.LevelWarn, msg, keyvals...)
}
