package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/invoicebox/backend/utils"
)

type requestLogger struct {
	logger  *slog.Logger
	ignored map[string]bool
	// level of the requests that did not fail
	successLevel slog.Level
}

type LoggerOption func(*requestLogger)

func WithIgnorePath(paths []string) LoggerOption {
	return func(l *requestLogger) {
		for _, path := range paths {
			l.ignored[path] = true
		}
	}
}

// WithRequestLoggingLevel set to "errors" keeps only the failed requests at info level and above
func WithRequestLoggingLevel(level string) LoggerOption {
	return func(l *requestLogger) {
		if level == "errors" {
			l.successLevel = slog.LevelDebug
		}
	}
}

// NewLogging logs one line per request once it is served. Client errors are warnings and
// server errors are errors.
func NewLogging(logger *slog.Logger, options ...LoggerOption) gin.HandlerFunc {
	l := &requestLogger{
		logger:       logger,
		ignored:      make(map[string]bool),
		successLevel: slog.LevelInfo,
	}
	for _, option := range options {
		option(l)
	}
	return l.handle
}

func (l *requestLogger) level(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return l.successLevel
	}
}

func (l *requestLogger) handle(c *gin.Context) {
	if l.ignored[c.Request.URL.Path] {
		c.Next()
		return
	}

	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	attrs := []slog.Attr{
		slog.Int("status", status),
		slog.Int64("latency", time.Since(start).Milliseconds()),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("client_ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("data_length", max(c.Writer.Size(), 0)),
	}
	if route := c.FullPath(); route != "" {
		attrs = append(attrs, slog.String("route", route))
	}
	if workspaceId := c.Param("workspace_id"); workspaceId != "" {
		attrs = append(attrs, slog.String("workspace_id", workspaceId))
	}
	// the authentication middleware replaced the request context if the caller is known
	if creds, ok := utils.CredentialsFromCtx(c.Request.Context()); ok {
		attrs = append(attrs, slog.String("user_id", string(creds.ActorIdentity.UserId)))
	}
	if len(c.Errors) > 0 {
		attrs = append(attrs, slog.String("error", c.Errors.String()))
	}

	l.logger.LogAttrs(c.Request.Context(), l.level(status),
		c.Request.Method+" "+c.Request.URL.Path, attrs...)
}
