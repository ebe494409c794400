package creeble

import "log/slog"

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an slog logger. A nil logger uses slog.Default().
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogLogger{logger: logger}
}

func slogArgs(fields map[string]any) []any {
	args := make([]any, 0, len(fields)*2)
	for key, value := range fields {
		args = append(args, key, value)
	}

	return args
}

// Debug logs at debug level.
func (l *SlogLogger) Debug(msg string, fields map[string]any) {
	l.logger.Debug(msg, slogArgs(fields)...)
}

// Info logs at info level.
func (l *SlogLogger) Info(msg string, fields map[string]any) {
	l.logger.Info(msg, slogArgs(fields)...)
}

// Warn logs at warn level.
func (l *SlogLogger) Warn(msg string, fields map[string]any) {
	l.logger.Warn(msg, slogArgs(fields)...)
}

// Error logs at error level.
func (l *SlogLogger) Error(msg string, fields map[string]any) {
	l.logger.Error(msg, slogArgs(fields)...)
}
