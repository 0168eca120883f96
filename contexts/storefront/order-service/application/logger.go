package application

import "log/slog"

// ResolveLogger keeps handler structs usable with zero-value loggers.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
