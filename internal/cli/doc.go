// Package cli implements the command-line interface for fnp-results.
//
// The cli package provides the Cobra-based CLI: `results` crawls the federation
// competition pages and writes the tracked club's match snapshot, `fixtures`
// scrapes the weekly billboard, and `show` filters, sorts and prints a stored
// snapshot as text or JSON. It wires configuration, logging, the crawler and
// storage together.
package cli
