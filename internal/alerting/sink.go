package alerting

import (
	"go.uber.org/zap"
)

// Sink records alert traffic and run diagnostics. Entries at SeverityError
// mark conditions the run must stop for; the sink only records them, the
// caller owns termination.
type Sink interface {
	Log(component, message string, severity Severity)
}

// LogSink writes sink entries through the shared zap logger, which carries
// them to both the console and the append-only run log.
type LogSink struct {
	log *zap.SugaredLogger
}

func NewLogSink(log *zap.SugaredLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Log(component, message string, severity Severity) {
	entry := s.log.With("component", component)
	switch severity {
	case SeverityError:
		entry.Error(message)
	case SeverityWarning:
		entry.Warn(message)
	default:
		entry.Info(message)
	}
}

// Emit records every alert at its own severity under the given component.
func Emit(sink Sink, component string, alerts []Alert) {
	for _, a := range alerts {
		sink.Log(component, a.Message, a.Severity)
	}
}
