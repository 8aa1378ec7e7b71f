package audit

import (
	"context"
	"log/slog"
)

// Entry is one append-only audit record.
type Entry struct {
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Success  bool
	Details  map[string]any
}

// Sink receives audit entries. Failures are logged by implementations and
// must never roll back the transaction that produced the entry.
type Sink interface {
	Record(ctx context.Context, e Entry)
}

// LogSink writes audit entries to structured logs.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(_ context.Context, e Entry) {
	s.logger.Info("audit",
		"actor", e.Actor,
		"action", e.Action,
		"entity", e.Entity,
		"entity_id", e.EntityID,
		"success", e.Success,
		"details", e.Details,
	)
}
