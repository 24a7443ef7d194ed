// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package encode

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 50), B: 90, A: 255})
		}
	}
	return img
}

func TestForExt_RasterRoundTrip(t *testing.T) {
	for _, ext := range []string{".png", "jpg", ".JPEG", ".tif", "tiff", ".bmp", ".gif"} {
		t.Run(ext, func(t *testing.T) {
			enc, err := ForExt(ext, Options{Quality: 90})
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, enc.Encode(&buf, testImage()))

			got, err := imaging.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, image.Pt(8, 5), got.Bounds().Size())
		})
	}
}

func TestForExt_PDF(t *testing.T) {
	enc, err := ForExt(".pdf", Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, enc.Encode(&buf, testImage()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output should be a PDF")
	assert.Contains(t, buf.String(), "/DCTDecode", "page image should be JPEG data")
}

func TestForExt_Unsupported(t *testing.T) {
	for _, ext := range []string{".webp", ".cr3", ""} {
		_, err := ForExt(ext, Options{})
		assert.ErrorIs(t, err, ErrUnsupportedFormat, "ext %q", ext)
	}
}

func TestExtensions(t *testing.T) {
	exts := Extensions()
	assert.Contains(t, exts, ".png")
	assert.Contains(t, exts, ".pdf")
	assert.IsIncreasing(t, exts)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "photo.png")

	enc, err := ForExt(".png", Options{})
	require.NoError(t, err)
	require.NoError(t, WriteFile(out, testImage(), enc))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

type failingEncoder struct{}

func (failingEncoder) Encode(w io.Writer, img image.Image) error {
	io.WriteString(w, "partial")
	return errors.New("disk on fire")
}

func TestWriteFile_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "photo.png")

	err := WriteFile(out, testImage(), failingEncoder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
