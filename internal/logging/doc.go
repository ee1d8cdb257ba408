// Package logging provides the Field-based logging interface used by the
// factorial engines, the sweep driver and the HTTP server, backed by zerolog.
package logging
