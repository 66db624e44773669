// Package log provides protocol capture for TCAT sessions.
//
// Capture is separate from operational logging (slog): every TLV exchanged
// over a secure stream can be recorded as an Event, together with connection
// state changes and errors, giving a machine-readable trace of a session.
//
// # Basic Usage
//
//	// Console output via slog
//	capture := log.NewSlogAdapter(slog.Default())
//
//	// Binary capture file
//	capture, _ := log.NewFileLogger("session.tlog")
//
//	// Both
//	capture := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fileLogger)
//
// # File Format
//
// Capture files are a concatenation of CBOR encoded events with integer map
// keys. The tcat-log tool views, filters and summarizes them.
package log
