// internal/domain/upload/entity.go
package upload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/your-org/bookstore-backend/internal/pkg/apperror"
)

var (
	ErrEmptyFile        = apperror.Validation("No file uploaded")
	ErrFileTooLarge     = apperror.Validation("File is too large")
	ErrExtensionBlocked = apperror.Validation("File type is not allowed")
	ErrInvalidPublicID  = apperror.Validation("Invalid file id")
)

// Result describes a stored file
type Result struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Size     int64  `json:"size"`
}

// Extension returns the lower-cased extension of filename without the dot
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// IsImage reports whether filename has an image extension
func IsImage(filename string) bool {
	switch Extension(filename) {
	case "jpg", "jpeg", "png", "gif", "webp":
		return true
	}
	return false
}

// FormatSize returns a human-readable file size
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
