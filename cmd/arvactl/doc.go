// Package main hosts the arvactl entrypoint and command graph.
//
// The Cobra command tree resolves configuration lazily, builds the slog
// logger, and hands the real work to the internal packages: generate drives
// the variant engine under a batch lock, qa runs the gates on a single
// candidate, masks scaffolds and previews upholstery masks, and history reads
// the SQLite mirror of the variant log.
//
// Keep this package thin. New behavior belongs in internal/ first and is only
// surfaced here as commands or flags.
package main
