// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package encode serializes decoded images into the output format selected
// by file extension and writes them atomically.
package encode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/phpdave11/gofpdf"

	"github.com/pdiddy/formatflip/pkg/types"
)

// ErrUnsupportedFormat means no encoder exists for an output extension.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// pdfImageName is the registered image key inside generated PDFs.
const pdfImageName = "page"

// Encoder writes an image in one output format.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
}

// Options tunes the encoders.
type Options struct {
	// Quality is the JPEG quality (1-100). PDF pages embed JPEG data at
	// the same quality.
	Quality int
}

var rasterFormats = map[string]imaging.Format{
	".png":  imaging.PNG,
	".jpg":  imaging.JPEG,
	".jpeg": imaging.JPEG,
	".tif":  imaging.TIFF,
	".tiff": imaging.TIFF,
	".bmp":  imaging.BMP,
	".gif":  imaging.GIF,
}

// Extensions lists every supported output extension, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(rasterFormats)+1)
	for ext := range rasterFormats {
		exts = append(exts, ext)
	}
	exts = append(exts, ".pdf")
	sort.Strings(exts)
	return exts
}

// ForExt returns the encoder for ext ("png", ".JPG", ...).
func ForExt(ext string, opts Options) (Encoder, error) {
	if opts.Quality <= 0 {
		opts.Quality = types.DefaultQuality
	}
	norm := types.NormalizeExt(ext)
	if norm == ".pdf" {
		return &pdfEncoder{quality: opts.Quality}, nil
	}
	format, ok := rasterFormats[norm]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedFormat, ext, Extensions())
	}

	var encOpts []imaging.EncodeOption
	switch format {
	case imaging.JPEG:
		encOpts = append(encOpts, imaging.JPEGQuality(opts.Quality))
	case imaging.PNG:
		encOpts = append(encOpts, imaging.PNGCompressionLevel(png.DefaultCompression))
	}
	return &rasterEncoder{format: format, opts: encOpts}, nil
}

type rasterEncoder struct {
	format imaging.Format
	opts   []imaging.EncodeOption
}

func (r *rasterEncoder) Encode(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, r.format, r.opts...); err != nil {
		return fmt.Errorf("encoding %s: %w", r.format, err)
	}
	return nil
}

// pdfEncoder writes a single page sized to the image at 72 DPI, so one
// pixel maps to one point.
type pdfEncoder struct {
	quality int
}

func (p *pdfEncoder) Encode(w io.Writer, img image.Image) error {
	var jpg bytes.Buffer
	if err := imaging.Encode(&jpg, img, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return fmt.Errorf("encoding PDF page image: %w", err)
	}

	b := img.Bounds()
	size := gofpdf.SizeType{Wd: float64(b.Dx()), Ht: float64(b.Dy())}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("P", size)

	opts := gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(pdfImageName, opts, &jpg)
	pdf.ImageOptions(pdfImageName, 0, 0, size.Wd, size.Ht, false, opts, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

// WriteFile encodes img to path through a temporary file in the same
// directory, renaming on success so a failed encode leaves nothing behind.
func WriteFile(path string, img image.Image, enc Encoder) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".formatflip-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	encErr := enc.Encode(tmpFile, img)
	closeErr := tmpFile.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return encErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	// CreateTemp uses 0600; converted images are ordinary files.
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
