package qc

import "errors"

// Sentinel errors for the inspection core. Callers (HTTP handlers, services)
// are expected to match these with errors.Is and translate them to their own
// failure surface.
var (
	// ErrInputDecode indicates the supplied bytes could not be decoded as an
	// image when image decoding was required. Never retried internally.
	ErrInputDecode = errors.New("input is not a decodable image")

	// ErrValidation indicates an unknown enum value or a missing required
	// field. Rejected before any state is touched.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a referenced inspection or rework job is absent.
	ErrNotFound = errors.New("not found")

	// ErrInspectionFailed wraps unexpected internal faults during detection.
	// An inspect call is side-effect free, so the caller may retry it whole.
	ErrInspectionFailed = errors.New("inspection failed")
)
