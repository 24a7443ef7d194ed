// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/formatflip/pkg/types"
)

func sampleRun() types.Run {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ok := types.Succeeded(types.NewTask("/in/a.cr3", "/out", ".png"), 1500*time.Millisecond)
	ok.Metadata = &types.Metadata{Make: "Canon", Model: "EOS R6"}
	bad := types.Failed(types.NewTask("/in/b.cr3", "/out", ".png"), assert.AnError, 20*time.Millisecond)

	return types.Run{
		ID:         "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		InputPath:  "/in",
		OutputDir:  "/out",
		InputExt:   ".cr3",
		OutputExt:  ".png",
		Decoder:    "dcraw_emu",
		Workers:    2,
		Converted:  1,
		Failed:     1,
		Results:    []types.Result{ok, bad},
	}
}

func TestBuild(t *testing.T) {
	r := Build(sampleRun())

	assert.Equal(t, "2s", r.Elapsed)
	assert.Equal(t, Summary{Converted: 1, Failed: 1, Total: 2}, r.Summary)
	require.Len(t, r.Files, 2)
	assert.Equal(t, "/out/a.png", r.Files[0].Output)
	assert.Equal(t, "1.5s", r.Files[0].Duration)
	assert.Equal(t, "Canon", r.Files[0].Camera.Make)
	assert.Equal(t, types.OutcomeFailure, r.Files[1].Outcome)
	assert.Contains(t, r.Files[1].Message, "Error processing b.cr3")
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	require.NoError(t, Write(path, sampleRun()))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 2, got.Summary.Total)
	assert.Equal(t, "EOS R6", got.Files[0].Camera.Model)
	assert.Nil(t, got.Files[1].Camera)
}
