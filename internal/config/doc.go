// Package config loads, normalizes, and validates arvactl configuration data.
//
// It supplies repository defaults, resolves storefront-relative paths, expands
// tilde shortcuts, reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and NTFY_TOPIC. The Config type centralizes every knob the
// variant pipeline and CLI need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
