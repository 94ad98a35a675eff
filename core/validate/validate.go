// Package validate checks candidate uploads before any network activity.
package validate

import "errors"

const (
	// MaxFileSize is the largest accepted upload, 10 MiB.
	MaxFileSize = 10 * 1024 * 1024
	// MaxNameLength is the longest accepted filename.
	MaxNameLength = 255
	// PDFMimeType is the only accepted content type.
	PDFMimeType = "application/pdf"
)

// Validation failures. The messages are shown to users verbatim.
var (
	ErrInvalidType = errors.New("Please select a PDF file")
	ErrTooLarge    = errors.New("File size must be less than 10MB")
	ErrEmpty       = errors.New("File cannot be empty")
	ErrNameTooLong = errors.New("File name must be 255 characters or fewer")
)

// File validates a candidate upload. Checks run in a fixed order and the
// first failure wins: content type, size limit, empty file, name length.
// A nil return means the file may be uploaded. No side effects.
func File(name, mimeType string, size int64) error {
	if mimeType != PDFMimeType {
		return ErrInvalidType
	}
	if size > MaxFileSize {
		return ErrTooLarge
	}
	if size == 0 {
		return ErrEmpty
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
