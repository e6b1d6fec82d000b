// Package logger configures the application's structured logging.
//
// Loggers are plain *slog.Logger values. Setup builds the process-wide JSON
// logger from configuration, and WithLogger/FromContext carry a request- or
// operation-scoped logger through a context.Context.
package logger
