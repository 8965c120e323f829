package media

type AssetType string

const (
	AssetTypeItem      AssetType = "items"      // original uploads (photos, CAD, PDFs)
	AssetTypeThumbnail AssetType = "thumbnails" // derived jpeg previews
	AssetTypeUnknown   AssetType = "unknown"
)

// CaptureMetadata holds the EXIF and dimension information extracted from an
// uploaded item photo.
type CaptureMetadata struct {
	Width       *int    `json:"width,omitempty"`
	Height      *int    `json:"height,omitempty"`
	CameraMake  *string `json:"camera_make,omitempty"`
	CameraModel *string `json:"camera_model,omitempty"`
	TakenAt     *int64  `json:"taken_at,omitempty"`
}
