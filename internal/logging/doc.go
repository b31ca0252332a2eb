// Package logging provides concrete implementations of the shopload.Logger interface.
//
// Available implementations:
//   - ZerologLogger: structured zerolog output to the console and a rotating log file
//   - NullLogger: discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
