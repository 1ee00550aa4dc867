package audit

import (
	"context"
	"log/slog"
)

// Authorization decisions.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Event represents an audit entry for an authorization decision.
type Event struct {
	// Type describes the event kind.
	Type string
	// Path is the request path.
	Path string
	// Mode is the authentication scheme in effect.
	Mode string
	// Decision is allow or deny.
	Decision string
	// RemoteAddr is the client address.
	RemoteAddr string
	// RequestID links the event to the request log line.
	RequestID string
}

// Logger records audit events.
type Logger interface {
	// Record stores an audit event.
	Record(ctx context.Context, event Event)
}

// StdLogger writes audit events to slog.
type StdLogger struct {
	logger *slog.Logger
}

// New returns a StdLogger.
func New(logger *slog.Logger) *StdLogger {
	return &StdLogger{logger: logger}
}

// Record logs an audit event. Denials are logged at warn level.
func (l *StdLogger) Record(ctx context.Context, event Event) {
	if l == nil || l.logger == nil {
		return
	}
	level := slog.LevelInfo
	if event.Decision == DecisionDeny {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "audit",
		"type", event.Type,
		"path", event.Path,
		"mode", event.Mode,
		"decision", event.Decision,
		"remote_addr", event.RemoteAddr,
		"request_id", event.RequestID,
	)
}
