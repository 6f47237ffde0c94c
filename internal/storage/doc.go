// Package storage provides JSON-file persistence for pipeline output.
//
// A Storage wraps one output file. Writes are all-or-nothing: the document is
// written to a temporary file in the same directory and renamed over the
// target, so readers never observe a half-written snapshot. The match snapshot
// and the billboard fixtures each get their own Storage.
package storage
