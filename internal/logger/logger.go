// Package logger builds the structured logger of a run: colored tint output on a
// terminal, plain slog text otherwise.
package logger

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options configures New.
type Options struct {
	// Level is a level name: debug, info, warn or error. Unknown names mean info.
	Level string
	// Writer receives log records; nil means stderr.
	Writer io.Writer
}

// New returns a logger writing to opts.Writer. Terminals get the tint handler.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	lvl := &slog.LevelVar{}
	lvl.Set(ParseLevel(opts.Level))

	if isTerminal(w) {
		return slog.New(newTerminalHandler(w, lvl))
	}
	return slog.New(newTextHandler(w, lvl))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "err", "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func newTextHandler(w io.Writer, lvl slog.Leveler) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				lvl, ok := a.Value.Any().(slog.Level)
				if ok {
					return slog.String(a.Key, strings.ToLower(lvl.String()))
				}
			}
			return a
		},
	})
}

func newTerminalHandler(w io.Writer, lvl slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		NoColor:    runtime.GOOS == "windows",
		AddSource:  lvl.Level() <= slog.LevelDebug,
		Level:      lvl,
		TimeFormat: "15:04:05.000",
	})
}
