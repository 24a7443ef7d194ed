// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/formatflip/pkg/types"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("raw"), 0o644))
	return p
}

func inputs(tasks types.TaskSet) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Name()
	}
	return out
}

func TestTasks_SingleFileIgnoresFilter(t *testing.T) {
	dir := t.TempDir()
	photo := touch(t, dir, "photo.nef")

	for _, ext := range []string{".cr3", ".nef", ""} {
		tasks, err := Tasks(photo, ext, "out", ".jpg")
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, photo, tasks[0].InputPath)
		assert.Equal(t, filepath.Join("out", "photo.jpg"), tasks[0].OutputPath())
	}
}

func TestTasks_Directory(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		ext   string
		want  []string
	}{
		{
			name:  "matching and non-matching",
			files: []string{"a.cr3", "b.cr3", "c.jpg"},
			ext:   ".cr3",
			want:  []string{"a.cr3", "b.cr3"},
		},
		{
			name:  "extension compared case-insensitively",
			files: []string{"A.CR3", "b.Cr3", "c.cr2"},
			ext:   "CR3",
			want:  []string{"A.CR3", "b.Cr3"},
		},
		{
			name:  "skips AppleDouble companions",
			files: []string{"a.cr3", "._a.cr3"},
			ext:   ".cr3",
			want:  []string{"a.cr3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f)
			}

			tasks, err := Tasks(dir, tt.ext, "out", ".png")
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, inputs(tasks))
			for _, task := range tasks {
				assert.Equal(t, ".png", task.OutputExt)
			}
		})
	}
}

func TestTasks_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "top.cr3")
	sub := filepath.Join(dir, "nested.cr3")
	require.NoError(t, os.Mkdir(sub, 0o755))
	touch(t, sub, "deep.cr3")

	tasks, err := Tasks(dir, ".cr3", "out", ".png")
	require.NoError(t, err)
	assert.Equal(t, []string{"top.cr3"}, inputs(tasks))
}

func TestTasks_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "c.jpg")

	tasks, err := Tasks(dir, ".cr3", "out", ".png")
	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Empty(t, tasks)
}

func TestTasks_InvalidInput(t *testing.T) {
	_, err := Tasks(filepath.Join(t.TempDir(), "missing"), ".cr3", "out", ".png")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTasks_OutputCollision(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.cr3")
	touch(t, dir, "a.CR3")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	if len(entries) < 2 {
		t.Skip("case-insensitive filesystem")
	}

	_, err = Tasks(dir, ".cr3", "out", ".png")
	assert.ErrorIs(t, err, ErrOutputCollision)
}

func TestFiles_CountsOnlyMatches(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"1.cr3", "2.cr3", "3.cr3", "x.txt", "y.png"} {
		touch(t, dir, f)
	}

	files, err := Files(dir, ".cr3")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}
