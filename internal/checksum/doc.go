// Package checksum fingerprints input files.
//
// The loader streams every CSV file through a Hasher while parsing it, so the
// log records exactly which bytes were imported without a second read.
package checksum
