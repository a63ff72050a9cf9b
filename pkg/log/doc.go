// Package log provides Vesta's structured logging facade and utilities.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Entries flow through a
// formatter/output pipeline so the same call sites can render text for
// terminals or JSON for collectors.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("ledger"))
//	l.Info("server started", log.Str("http", ":8080"))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config (level and
// format strings, typically sourced from flags or VESTA_* env vars).
//
// # Interop
//
// To capture output from libraries using the standard library logger (for
// example Pebble), use RedirectStdLog.
package log
