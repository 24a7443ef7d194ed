// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/formatflip/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func makeRun(id string, started time.Time) types.Run {
	ok := types.Succeeded(types.NewTask("/in/a.cr3", "/out", ".jpg"), 1200*time.Millisecond)
	ok.Metadata = &types.Metadata{Make: "Canon", Model: "EOS R5", DateTime: "2026:01:02 03:04:05"}
	bad := types.Failed(types.NewTask("/in/b.cr3", "/out", ".jpg"), errors.New("bad raw"), 0)
	return types.Run{
		ID:         id,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		InputPath:  "/in",
		OutputDir:  "/out",
		InputExt:   ".cr3",
		OutputExt:  ".jpg",
		Decoder:    "dcraw",
		Workers:    4,
		Converted:  1,
		Failed:     1,
		Results:    []types.Result{ok, bad},
	}
}

// --- tests ---

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), makeRun("r1", time.Now())); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()
	runs, err := s.History(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("runs = %d, want 1", len(runs))
	}
}

func TestRecordAndFiles(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run := makeRun("r1", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

	if err := s.Record(ctx, run); err != nil {
		t.Fatalf("record: %v", err)
	}

	files, err := s.Files(ctx, "r1")
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2", len(files))
	}
	if files[0].Task.OutputPath() != "/out/a.jpg" {
		t.Errorf("output = %q, want /out/a.jpg", files[0].Task.OutputPath())
	}
	if files[0].Duration != 1200*time.Millisecond {
		t.Errorf("duration = %v, want 1.2s", files[0].Duration)
	}
	if files[0].Metadata == nil || files[0].Metadata.Model != "EOS R5" {
		t.Errorf("metadata = %+v, want model EOS R5", files[0].Metadata)
	}
	if files[1].Outcome != types.OutcomeFailure || files[1].Metadata != nil {
		t.Errorf("second file = %+v, want failure without metadata", files[1])
	}
}

func TestRecord_DuplicateRunID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run := makeRun("dup", time.Now())

	if err := s.Record(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, run); err == nil {
		t.Fatal("expected error recording the same run twice")
	}

	files, err := s.Files(ctx, "dup")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("failed transaction should not add files: got %d", len(files))
	}
}

func TestHistory_NewestFirstWithLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, makeRun(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.History(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	for i, want := range []string{"r4", "r3", "r2"} {
		if runs[i].ID != want {
			t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, want)
		}
	}
	if runs[0].Total() != 2 || runs[0].Workers != 4 {
		t.Errorf("run counts not round-tripped: %+v", runs[0])
	}
	if !runs[0].StartedAt.Equal(base.Add(4 * time.Hour)) {
		t.Errorf("started = %v", runs[0].StartedAt)
	}
}
