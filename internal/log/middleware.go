package log

import (
	"net/http"
)

const CorrelationIDHeader = "X-Correlation-ID"

// InjectCorrelationID forwards the caller's correlation id to an outbound request.
// Requests made outside of a traced context get a fresh id so upstream logs can still
// be matched against ours.
func InjectCorrelationID(r *http.Request) string {
	id := GetOrGenerateCorrelationID(r.Context())
	r.Header.Set(CorrelationIDHeader, id)
	return id
}

func LogOutboundRequest(l *Logger, r *http.Request, status int, latencyMs int64) {
	l.WithCorrelationID(r.Context()).Info("Upstream request",
		"method", r.Method,
		"url", r.URL.Redacted(),
		"status", status,
		"latency_ms", latencyMs,
	)
}
