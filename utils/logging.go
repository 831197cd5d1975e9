package utils

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// NewLogger writes json lines understood by Cloud Logging when format is "json", and colored
// single lines for local development otherwise.
func NewLogger(format string) *slog.Logger {
	return newLogger(os.Stdout, format)
}

func newLogger(w io.Writer, format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{ReplaceAttr: cloudLoggingAttr}))
	}
	return slog.New(newDevHandler(w, slog.LevelDebug))
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ContextKeyLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func StoreLoggerInContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, logger)
}

func StoreLoggerInContextMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return storeInContextMiddleware(StoreLoggerInContext, logger)
}

// Cloud Logging reads the entry text from "message" and its level from "severity"
func cloudLoggingAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.MessageKey:
		a.Key = "message"
	case slog.LevelKey:
		a.Key = "severity"
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(cloudLoggingSeverity(level))
		}
	}
	return a
}

func cloudLoggingSeverity(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// devHandler prints "<time> <level> <message>" followed by the attributes in logfmt
type devHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	attrs slog.Handler
}

func newDevHandler(w io.Writer, level slog.Level) *devHandler {
	return &devHandler{
		mu: &sync.Mutex{},
		w:  w,
		attrs: slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) == 0 &&
					(a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey) {
					return slog.Attr{}
				}
				return a
			},
		}),
	}
}

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\x1b[35m",
	slog.LevelInfo:  "\x1b[34m",
	slog.LevelWarn:  "\x1b[33m",
	slog.LevelError: "\x1b[31m",
}

func (h *devHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.attrs.Enabled(ctx, level)
}

func (h *devHandler) Handle(ctx context.Context, r slog.Record) error {
	color, ok := levelColors[r.Level]
	if !ok {
		color = levelColors[slog.LevelError]
	}
	prefix := r.Time.Format(time.RFC3339) + " " + color + r.Level.String() + "\x1b[0m " + r.Message + " "

	// the prefix and the attributes must land on the same line
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := io.WriteString(h.w, prefix); err != nil {
		return err
	}
	return h.attrs.Handle(ctx, r)
}

func (h *devHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &devHandler{mu: h.mu, w: h.w, attrs: h.attrs.WithAttrs(attrs)}
}

func (h *devHandler) WithGroup(name string) slog.Handler {
	return &devHandler{mu: h.mu, w: h.w, attrs: h.attrs.WithGroup(name)}
}
