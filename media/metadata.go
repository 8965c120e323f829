package media

import (
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// helper to safely get a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	// val string might have null chars at the end
	val := strings.Trim(strings.TrimRight(tag.String(), "\x00"), "\"")
	if val == "" {
		return nil
	}
	return &val
}

// ExtractCaptureMetadata extracts dimensions and the EXIF fields the QC record
// keeps (camera make/model, capture time) from an item photo on disk. EXIF is
// optional: a photo without it still yields dimensions.
func ExtractCaptureMetadata(filePath string) (*CaptureMetadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	meta := &CaptureMetadata{}

	config, _, err := image.DecodeConfig(file)
	if err == nil {
		w, h := config.Width, config.Height
		meta.Width = &w
		meta.Height = &h
	} else {
		log.Printf("metadata: Warning - Could not decode config for dimensions of %s: %v", filePath, err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return meta, fmt.Errorf("metadata: failed to rewind file %s: %w", filePath, err)
	}

	exifData, err := exif.Decode(file)
	if err != nil {
		// no EXIF is common for renders and screenshots
		return meta, nil
	}

	meta.CameraMake = getString(exifData, exif.Make)
	meta.CameraModel = getString(exifData, exif.Model)

	if takenTime, err := exifData.DateTime(); err == nil {
		ts := takenTime.Unix()
		meta.TakenAt = &ts
	}

	return meta, nil
}
