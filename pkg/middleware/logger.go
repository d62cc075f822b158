// pkg/middleware/logger.go
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request through logger.
func RequestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return chimw.RequestLogger(&structuredLogger{logger: logger})
}

type structuredLogger struct {
	logger logrus.FieldLogger
}

func (l *structuredLogger) NewLogEntry(r *http.Request) chimw.LogEntry {
	fields := logrus.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
		"proto":     r.Proto,
	}
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		fields["request_id"] = reqID
	}
	return &logEntry{logger: l.logger.WithFields(fields)}
}

type logEntry struct {
	logger logrus.FieldLogger
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	entry := e.logger.WithFields(logrus.Fields{
		"status":   status,
		"bytes":    bytes,
		"duration": elapsed.String(),
	})
	switch {
	case status >= 500:
		entry.Error("request completed")
	case status >= 400:
		entry.Warn("request completed")
	default:
		entry.Info("request completed")
	}
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	e.logger.WithFields(logrus.Fields{
		"panic": v,
		"stack": string(stack),
	}).Error("request panicked")
}
