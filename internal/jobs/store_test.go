package jobs

import (
	"context"
	"testing"
	"time"

	"coursecast/internal/testsupport"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job := &Job{OwnerID: 9, Topic: "photosynthesis", Title: "Photosynthesis Basics"}
	id, err := store.Create(ctx, job)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == 0 {
		t.Fatal("id should be assigned")
	}

	loaded, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded == nil {
		t.Fatal("job should exist")
	}
	if loaded.Status != StatusPending {
		t.Errorf("status = %s, want pending", loaded.Status)
	}
	if loaded.Topic != "photosynthesis" || loaded.OwnerID != 9 {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.CreatedAt.IsZero() || loaded.UpdatedAt.IsZero() {
		t.Error("timestamps should round-trip")
	}
}

func TestGetMissingJob(t *testing.T) {
	store := openTestStore(t)
	job, err := store.Get(context.Background(), 12345)
	if err != nil {
		t.Fatal(err)
	}
	if job != nil {
		t.Errorf("expected nil for missing job, got %+v", job)
	}
}

func TestProgressAndCompletionLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &Job{Topic: "fractions"})
	if err != nil {
		t.Fatal(err)
	}

	if err := store.UpdateProgress(ctx, id, "processing", 0.55, "chunk 3 of 6", 3); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	job, _ := store.Get(ctx, id)
	if job.Status != StatusGenerating || job.Progress != 0.55 || job.ChunksCompleted != 3 {
		t.Errorf("after progress: %+v", job)
	}

	if err := store.MarkCompleted(ctx, id, "/out/final.mp4", "s3://bucket/final.mp4"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	job, _ = store.Get(ctx, id)
	if job.Status != StatusCompleted || job.Progress != 1.0 {
		t.Errorf("after completion: %+v", job)
	}
	if job.OutputPath != "/out/final.mp4" || job.OutputURL != "s3://bucket/final.mp4" {
		t.Errorf("outputs = %q / %q", job.OutputPath, job.OutputURL)
	}
}

func TestTouchBumpsUpdatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &Job{Topic: "tides"})
	if err != nil {
		t.Fatal(err)
	}
	before, _ := store.Get(ctx, id)

	time.Sleep(10 * time.Millisecond)
	if err := store.Touch(ctx, id); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	after, _ := store.Get(ctx, id)
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("updated_at did not advance: %s -> %s", before.UpdatedAt, after.UpdatedAt)
	}
	if after.Status != before.Status || after.Progress != before.Progress {
		t.Errorf("touch must not change other fields: %+v", after)
	}
}

func TestMarkFailedAndRetry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, &Job{Topic: "gravity"})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.MarkFailed(ctx, id, "VIDEO_RENDERING_FAILED", "every tier failed", true); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	job, _ := store.Get(ctx, id)
	if job.Status != StatusFailed || job.ErrorCode != "VIDEO_RENDERING_FAILED" || !job.Recoverable {
		t.Errorf("after failure: %+v", job)
	}

	reset, err := store.ResetForRetry(ctx, id)
	if err != nil {
		t.Fatalf("ResetForRetry: %v", err)
	}
	if !reset {
		t.Fatal("failed job should reset")
	}
	job, _ = store.Get(ctx, id)
	if job.Status != StatusPending || job.ErrorCode != "" || job.Progress != 0 {
		t.Errorf("after reset: %+v", job)
	}

	// A pending job does not reset again.
	reset, err = store.ResetForRetry(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if reset {
		t.Error("pending job should not reset")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a, _ := store.Create(ctx, &Job{Topic: "a"})
	b, _ := store.Create(ctx, &Job{Topic: "b"})
	if err := store.MarkCompleted(ctx, a, "/out/a.mp4", ""); err != nil {
		t.Fatal(err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d jobs, want 2", len(all))
	}

	pending, err := store.List(ctx, StatusPending)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != b {
		t.Errorf("pending = %+v", pending)
	}
}

func TestClearTerminalRemovesFinishedJobs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	done, _ := store.Create(ctx, &Job{Topic: "done"})
	failed, _ := store.Create(ctx, &Job{Topic: "failed"})
	if _, err := store.Create(ctx, &Job{Topic: "live"}); err != nil {
		t.Fatal(err)
	}
	_ = store.MarkCompleted(ctx, done, "/x.mp4", "")
	_ = store.MarkFailed(ctx, failed, "UNKNOWN_ERROR", "boom", false)

	removed, err := store.ClearTerminal(ctx)
	if err != nil {
		t.Fatalf("ClearTerminal: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	remaining, _ := store.List(ctx)
	if len(remaining) != 1 || remaining[0].Topic != "live" {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestSetScript(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	id, _ := store.Create(ctx, &Job{Topic: "cells"})

	if err := store.SetScript(ctx, id, "Cell Division", `{"title":"Cell Division"}`, 6); err != nil {
		t.Fatalf("SetScript: %v", err)
	}
	job, _ := store.Get(ctx, id)
	if job.Title != "Cell Division" || job.ChunkCount != 6 || job.ScriptJSON == "" {
		t.Errorf("after SetScript: %+v", job)
	}
}

func TestStatusHelpers(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() || !StatusCancelled.Terminal() {
		t.Error("terminal statuses misreported")
	}
	if StatusPending.Terminal() || StatusGenerating.Terminal() {
		t.Error("live statuses misreported as terminal")
	}
	if Status("bogus").Valid() {
		t.Error("unknown status should be invalid")
	}
}
