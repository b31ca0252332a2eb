// Package filesystem provides filesystem abstraction interfaces and implementations.
//
// The loader reads its input through FileSystemProvider so tests can run
// against an in-memory tree instead of the OS filesystem.
//
// Implementations:
//   - OSFileSystem: production implementation using the OS filesystem
//   - MemoryFileSystem: in-memory implementation for testing
package filesystem
