package utils

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/atelierworks/jewelqc-backend/qc"
)

var cadExtensions = map[string]bool{
	".stl":  true,
	".step": true,
	".stp":  true,
	".obj":  true,
	".iges": true,
	".igs":  true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
	".gif":  true,
}

// ClassifyUpload determines the QC file type for an uploaded item from its
// filename, declared content type, and leading bytes, in that order.
func ClassifyUpload(filename, contentType string, data []byte) (qc.FileType, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case cadExtensions[ext]:
		return qc.FileTypeCAD, nil
	case ext == ".pdf":
		return qc.FileTypePDF, nil
	case imageExtensions[ext]:
		return qc.FileTypeImage, nil
	}

	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch {
	case ct == "application/pdf":
		return qc.FileTypePDF, nil
	case strings.HasPrefix(ct, "image/"):
		return qc.FileTypeImage, nil
	case ct == "model/stl" || ct == "model/obj" || ct == "model/step":
		return qc.FileTypeCAD, nil
	}

	// last resort: sniff the bytes
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return qc.FileTypeImage, nil
	}

	return "", fmt.Errorf("%w: unsupported upload type (filename=%q, content_type=%q)", qc.ErrValidation, filename, contentType)
}
