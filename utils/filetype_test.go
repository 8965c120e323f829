package utils

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierworks/jewelqc-backend/qc"
)

func TestClassifyUploadByExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     qc.FileType
	}{
		{"ring.jpg", qc.FileTypeImage},
		{"ring.JPEG", qc.FileTypeImage},
		{"pendant.png", qc.FileTypeImage},
		{"band.webp", qc.FileTypeImage},
		{"design.stl", qc.FileTypeCAD},
		{"design.STEP", qc.FileTypeCAD},
		{"design.obj", qc.FileTypeCAD},
		{"design.igs", qc.FileTypeCAD},
		{"spec.pdf", qc.FileTypePDF},
	}

	for _, tc := range cases {
		got, err := ClassifyUpload(tc.filename, "", nil)
		require.NoError(t, err, tc.filename)
		assert.Equal(t, tc.want, got, tc.filename)
	}
}

func TestClassifyUploadByContentType(t *testing.T) {
	got, err := ClassifyUpload("upload", "image/jpeg", nil)
	require.NoError(t, err)
	assert.Equal(t, qc.FileTypeImage, got)

	got, err = ClassifyUpload("upload", "application/pdf; charset=binary", nil)
	require.NoError(t, err)
	assert.Equal(t, qc.FileTypePDF, got)

	got, err = ClassifyUpload("upload", "model/stl", nil)
	require.NoError(t, err)
	assert.Equal(t, qc.FileTypeCAD, got)
}

func TestClassifyUploadSniffsImageBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	got, err := ClassifyUpload("mystery", "application/octet-stream", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, qc.FileTypeImage, got)
}

func TestClassifyUploadRejectsUnknown(t *testing.T) {
	_, err := ClassifyUpload("notes.txt", "text/plain", []byte("hello"))

	require.Error(t, err)
	assert.ErrorIs(t, err, qc.ErrValidation)
}
