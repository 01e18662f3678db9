// Package qa decides whether a candidate variant may be published.
//
// A candidate is measured against the base hero and the upholstery mask, then
// run through four gates:
//
//   - background invariance: mean RGB diff outside the mask stays small
//   - upholstery change: mean RGB diff inside the mask is large enough
//   - color accuracy: mean CIE76 ΔE to the target color, sampled over
//     mid-luminance upholstery pixels, stays under the limit
//   - artifacts: the upholstery keeps enough distinct channel values to rule
//     out banding or posterization
//
// The candidate passes only when all four gates pass. A failed gate is a normal
// outcome, not an error.
package qa
