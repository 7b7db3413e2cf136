package entitycache

// Fields is a minimal structured field map for logs. The engine uses a small fixed
// vocabulary: "cache" (namespace+kind), "key" (primary key, or a redacted copy key),
// "partition", "id", "entities", "partitions", "generation", "took", "err".
type Fields map[string]any

// Logger is a tiny leveled logger. Adapters for zap, logrus and slog live under log/.
// If Logger is nil in Options, logging is disabled. Loads and reloads log at Info,
// clears and migrations at Debug, decode failures and dangling members at Warn.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
