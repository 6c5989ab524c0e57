// Package log is the structured logger shared by the avatar server. It wraps
// log/slog with trace correlation, stack capture at high levels and error
// chain expansion for errors built by internal/xerrors.
package log

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

type Logger interface {
	With(kv ...any) Logger

	Debug(ctx context.Context, msg string, kv ...any)
	Info(ctx context.Context, msg string, kv ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, err error, msg string, kv ...any)

	Sync() error
}

// Options configures New. Empty build fields are left off the record.
type Options struct {
	App     string
	Version string
	Commit  string
	BuildID string

	Level           slog.Level
	StacktraceLevel slog.Level
	JSON            bool

	IncludeErrorLinks bool
	MaxErrorLinks     int

	// Writer defaults to stdout.
	Writer io.Writer
}

func New(opts Options) (Logger, error) { return newSlog(opts) }

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl, nil
	}
	return 0, xerrors.Newf("unknown log level %q (valid levels are debug|info|warn|error)", s)
}
