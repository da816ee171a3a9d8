package state

import (
	"context"
	"testing"
	"time"
)

func TestLoadEmpty(t *testing.T) {
	store := OpenMemory(t)

	rs, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if rs.Running {
		t.Error("fresh store should not be running")
	}
	if !rs.LastRunAt.IsZero() {
		t.Errorf("fresh store LastRunAt = %v, want zero", rs.LastRunAt)
	}
	if rs.TotalCount != 0 {
		t.Errorf("fresh store TotalCount = %d, want 0", rs.TotalCount)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := OpenMemory(t)
	ctx := context.Background()

	want := RunState{
		Running:    true,
		LastRunAt:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		TotalCount: 42,
	}

	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Running != want.Running {
		t.Errorf("Running = %v, want %v", got.Running, want.Running)
	}
	if !got.LastRunAt.Equal(want.LastRunAt) {
		t.Errorf("LastRunAt = %v, want %v", got.LastRunAt, want.LastRunAt)
	}
	if got.TotalCount != want.TotalCount {
		t.Errorf("TotalCount = %d, want %d", got.TotalCount, want.TotalCount)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := OpenMemory(t)
	ctx := context.Background()

	if err := store.Save(ctx, RunState{Running: true, TotalCount: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, RunState{Running: false, TotalCount: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Running {
		t.Error("Running should have been overwritten to false")
	}
	if got.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", got.TotalCount)
	}
}

func TestZeroLastRunAtRoundTrip(t *testing.T) {
	store := OpenMemory(t)
	ctx := context.Background()

	if err := store.Save(ctx, RunState{TotalCount: 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !got.LastRunAt.IsZero() {
		t.Errorf("LastRunAt = %v, want zero", got.LastRunAt)
	}
}
