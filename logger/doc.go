// Package logger provides structured logging for apikit using zerolog.
//
// It supports JSON and console output, level configuration, component-scoped
// loggers, and request-scoped fields carried through a context.Context.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("dispatch")
//	log.Info("request sent", logger.Fields("url", u, "attempt", 1))
//
// The dispatcher stores a request ID on the context of every send; loggers
// derived with WithContext pick it up so transport and cache logs for one
// logical call can be correlated.
package logger
