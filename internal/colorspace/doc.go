// Package colorspace converts between 8-bit sRGB and CIE L*a*b* (D65) and
// measures color distance with the CIE76 ΔE formula.
//
// All functions are pure and operate on value types, so they are safe to call
// from any number of goroutines. Conversions follow the standard sRGB transfer
// curve and the 2° D65 reference white with XYZ on a 0..100 scale.
package colorspace
