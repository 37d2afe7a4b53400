package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/saulo-duarte/edugen-api/internal/config"
)

// Logger is chi's request logger writing through the shared logrus logger.
var Logger = middleware.RequestLogger(&logFormatter{})

type logFormatter struct{}

func (f *logFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	entry := config.WithContext(r.Context()).WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"remote_addr": r.RemoteAddr,
	})
	return &logEntry{entry: entry}
}

type logEntry struct {
	entry *logrus.Entry
}

func (l *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra any) {
	e := l.entry.WithFields(logrus.Fields{
		"status":      status,
		"bytes":       bytes,
		"duration_ms": elapsed.Milliseconds(),
	})
	switch {
	case status >= http.StatusInternalServerError:
		e.Error("HTTP request")
	case status >= http.StatusBadRequest:
		e.Warn("HTTP request")
	default:
		e.Info("HTTP request")
	}
}

func (l *logEntry) Panic(v any, stack []byte) {
	l.entry.WithField("stack", string(stack)).Error(fmt.Sprintf("panic: %+v", v))
}
