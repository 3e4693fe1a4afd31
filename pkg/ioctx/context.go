// Package ioctx threads a command's output streams and logger through a
// context, so commands can be run against buffers in tests.
package ioctx

import (
	"context"
	"io"
	"log/slog"
)

type key int

const (
	stdoutKey key = iota
	stderrKey
	loggerKey
)

// writer returns the writer stored under k, or io.Discard.
func writer(ctx context.Context, k key) io.Writer {
	if w, ok := ctx.Value(k).(io.Writer); ok {
		return w
	}
	return io.Discard
}

func StdoutFromContext(ctx context.Context) io.Writer {
	return writer(ctx, stdoutKey)
}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey, w)
}

func StderrFromContext(ctx context.Context) io.Writer {
	return writer(ctx, stderrKey)
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey, w)
}

// LoggerFromContext returns the logger stored in ctx, or one that discards
// everything.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

func LoggerToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
