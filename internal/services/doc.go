// Package services defines shared utilities consumed by the variant pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp product slugs, color names, pipeline phases,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper, and Classify, which maps a
//     failure to the pair-level reaction (skip, continue, review, fatal).
//
// Subpackages hold the clients for external services such as the image edit
// API used to generate candidates.
package services
