// Package logger builds the zap loggers used across livelist.
//
// HTTP handlers tag their entries with the request's RayID through WithRayID.
// Long-lived components (the composite engine, views, catalog) get a scoped
// logger from Named so their entries carry a component field.
//
// # Configuration
//
//   - Level: debug, info, warn, error. Unknown levels fall back to info.
//   - Format: json or console.
//   - Output: stderr, stdout or a file path.
//
// A debug level selects zap's development configuration, under which DPanic
// panics. The list engines report broken change streams through DPanic, so
// debug builds fail loudly while production builds only log.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "json"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
