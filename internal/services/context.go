package services

import "context"

type contextKey string

const (
	slugKey      contextKey = "slug"
	colorKey     contextKey = "color"
	phaseKey     contextKey = "phase"
	requestIDKey contextKey = "request_id"
)

// WithSlug annotates context with the product slug being processed.
func WithSlug(ctx context.Context, slug string) context.Context {
	if slug == "" {
		return ctx
	}
	return context.WithValue(ctx, slugKey, slug)
}

// SlugFromContext returns the product slug if present.
func SlugFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, slugKey)
}

// WithColor annotates context with the fabric color name.
func WithColor(ctx context.Context, color string) context.Context {
	if color == "" {
		return ctx
	}
	return context.WithValue(ctx, colorKey, color)
}

// ColorFromContext returns the fabric color name if present.
func ColorFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, colorKey)
}

// WithPhase annotates context with the pipeline phase (ai, fallback, ...).
func WithPhase(ctx context.Context, phase string) context.Context {
	if phase == "" {
		return ctx
	}
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromContext returns the pipeline phase if present.
func PhaseFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, phaseKey)
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
