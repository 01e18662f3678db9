// Package catalog reads the storefront's product data and derives the
// product/color pairs the variant pipeline works on, along with the
// deterministic variant output paths.
package catalog
