// Package raster holds the in-memory pixel buffer shared by the variant
// pipeline together with its codec and resampling helpers.
//
// An Image is row-major, 8 bits per channel, with 3 (RGB) or 4 (RGBA)
// interleaved channels. Images are treated as immutable: Resize, Clone and the
// recoloring code elsewhere always return new buffers. Decoding accepts PNG,
// JPEG, GIF and WebP; encoding produces PNG (for intermediates and API
// uploads) or JPEG (published variants).
package raster
