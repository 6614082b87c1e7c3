package metrics

import (
	"context"
	"testing"
)

func TestInMemoryFilterStoreRoundTrip(t *testing.T) {
	store := NewInMemoryFilterStore()
	viewer := ViewerContext{UserID: "user-1", Role: RoleUser}
	ctx := context.Background()

	if _, ok, err := store.SavedFilter(ctx, viewer); err != nil || ok {
		t.Fatalf("expected no saved filter, got ok=%v err=%v", ok, err)
	}

	want := FilterState{Region: "North", WindowDays: 30}
	if err := store.SaveFilter(ctx, viewer, want); err != nil {
		t.Fatalf("SaveFilter returned error: %v", err)
	}
	got, ok, err := store.SavedFilter(ctx, viewer)
	if err != nil || !ok {
		t.Fatalf("expected saved filter, got ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}

func TestInMemoryFilterStoreNormalizesEmptyRegion(t *testing.T) {
	store := NewInMemoryFilterStore()
	viewer := ViewerContext{UserID: "user-2"}
	ctx := context.Background()

	if err := store.SaveFilter(ctx, viewer, FilterState{WindowDays: 7}); err != nil {
		t.Fatalf("SaveFilter returned error: %v", err)
	}
	got, _, _ := store.SavedFilter(ctx, viewer)
	if got.Region != RegionAll {
		t.Fatalf("expected empty region normalized to %q, got %q", RegionAll, got.Region)
	}
}

func TestInMemoryFilterStoreRequiresUserID(t *testing.T) {
	store := NewInMemoryFilterStore()
	if err := store.SaveFilter(context.Background(), ViewerContext{}, FilterState{WindowDays: 7}); err == nil {
		t.Fatal("expected error for anonymous viewer")
	}
	if _, ok, err := store.SavedFilter(context.Background(), ViewerContext{}); ok || err != nil {
		t.Fatalf("expected anonymous viewer to have no saved filter, got ok=%v err=%v", ok, err)
	}
}
