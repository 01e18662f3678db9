package services_test

import (
	"context"
	"testing"

	"github.com/shop4me/ARVA-sub000/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSlug(ctx, "atlas-sofa")
	ctx = services.WithColor(ctx, "Slate Gray")
	ctx = services.WithPhase(ctx, "ai")
	ctx = services.WithRequestID(ctx, "req-123")

	if slug, ok := services.SlugFromContext(ctx); !ok || slug != "atlas-sofa" {
		t.Fatalf("unexpected slug: %v %v", slug, ok)
	}
	if color, ok := services.ColorFromContext(ctx); !ok || color != "Slate Gray" {
		t.Fatalf("unexpected color: %v %v", color, ok)
	}
	if phase, ok := services.PhaseFromContext(ctx); !ok || phase != "ai" {
		t.Fatalf("unexpected phase: %v %v", phase, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSlug(ctx, "")
	ctx = services.WithPhase(ctx, "")
	if _, ok := services.SlugFromContext(ctx); ok {
		t.Fatal("expected blank slug to be ignored")
	}
	if _, ok := services.PhaseFromContext(ctx); ok {
		t.Fatal("expected blank phase to be ignored")
	}
}
