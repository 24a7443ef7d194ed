// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package exifmeta reads camera metadata from the EXIF block embedded in a
// raw file. Most raw formats (CR2, NEF, ARW, DNG) are TIFF containers and
// CR3 carries a TIFF-structured CMT1 box, so a byte scan finds them all.
package exifmeta

import (
	"fmt"
	"strings"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"github.com/pdiddy/formatflip/pkg/types"
)

// Read returns the Make, Model, DateTime, and Orientation tags from the
// root IFD of path's EXIF data.
func Read(path string) (md types.Metadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			md, err = types.Metadata{}, fmt.Errorf("reading EXIF: %v", r)
		}
	}()

	rawExif, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		return types.Metadata{}, fmt.Errorf("EXIF not found: %v", err)
	}
	return parse(rawExif)
}

func parse(rawExif []byte) (types.Metadata, error) {
	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return types.Metadata{}, err
	}
	ti := exif.NewTagIndex()

	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return types.Metadata{}, fmt.Errorf("parsing EXIF: %v", err)
	}

	var md types.Metadata
	md.Make = stringTag(index.RootIfd, "Make")
	md.Model = stringTag(index.RootIfd, "Model")
	md.DateTime = stringTag(index.RootIfd, "DateTime")

	if tags, err := index.RootIfd.FindTagWithName("Orientation"); err == nil && len(tags) > 0 {
		if val, err := tags[0].Value(); err == nil {
			if o, ok := val.([]uint16); ok && len(o) > 0 {
				md.Orientation = int(o[0])
			}
		}
	}
	return md, nil
}

func stringTag(ifd *exif.Ifd, name string) string {
	tags, err := ifd.FindTagWithName(name)
	if err != nil || len(tags) == 0 {
		return ""
	}
	val, err := tags[0].Value()
	if err != nil {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
