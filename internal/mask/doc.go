// Package mask loads and prepares the per-product upholstery masks.
//
// A mask file is a grayscale (or RGB) PNG at any resolution where white marks
// upholstery. Masks are binarized at luminance > 127 and remapped to an
// image's dimensions by nearest index, never by interpolation, so that every
// pixel is either in or out. The package also renders the transparent-edit
// variant expected by image edit APIs, placeholder masks for new products, and
// red overlay previews for operator review.
package mask
