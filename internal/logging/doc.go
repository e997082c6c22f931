// Package logging builds the slog loggers pagewright writes with.
//
// Loggers come from config (console or JSON, stderr plus a log file) and carry
// a per-invocation session id. Console lines lift the component and the
// page identity (content id, page, scheme, key table, directive) to the front
// so one page's trail is easy to follow. WarnWithContext and ErrorWithContext
// make sure every problem line says what happened, what it costs and what to
// check next.
package logging
