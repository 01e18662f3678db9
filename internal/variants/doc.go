// Package variants runs the color variant pipeline for every eligible
// (product, color) pair.
//
// Each pair walks a small state machine:
//
//	skip_check -> ai -> fallback -> persist | review
//
// The skip check keeps an existing output that still passes QA unless the run
// is forced. The ai phase requests N candidates from the image edit service
// and selects the passing one with the lowest ΔE. When none pass, the fallback
// phase recolors the hero deterministically in Lab space, asks the service
// for one polish edit of that recolor and runs QA on the result once. A
// passing selection is published as JPEG; an exhausted one is flagged for
// manual review and nothing is written. Every attempt, including skips,
// appends one variant record.
//
// Pairs run on a bounded worker pool. Spacing between external calls belongs
// to the shared image edit client, not to the pool.
package variants
