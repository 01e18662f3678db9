// Package logging builds the slog loggers used by arvactl.
//
// Commands log human-readable lines to stderr (or JSON when logging.format is
// json) while a debug-level JSON copy is appended to arvactl.log. Pipeline
// code tags records with the product slug, color, phase and run correlation
// ID through WithContext, and reports recoverable problems with
// WarnWithContext so every warning names its impact and a next step.
package logging
