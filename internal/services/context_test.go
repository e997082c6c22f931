package services_test

import (
	"context"
	"testing"

	"pagewright/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithContentID(ctx, "06A0000000000263550B")
	ctx = services.WithPage(ctx, "pages/0001.jpg")
	ctx = services.WithStage(ctx, "compose")
	ctx = services.WithRunID(ctx, "run-123")

	if id, ok := services.ContentIDFromContext(ctx); !ok || id != "06A0000000000263550B" {
		t.Fatalf("unexpected content id: %v %v", id, ok)
	}
	if page, ok := services.PageFromContext(ctx); !ok || page != "pages/0001.jpg" {
		t.Fatalf("unexpected page: %v %v", page, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "compose" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithContentID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.ContentIDFromContext(ctx); ok {
		t.Fatal("expected no content id value")
	}
}
