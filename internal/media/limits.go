package media

import (
	"fmt"
)

const (
	// MaxUploadBytes is the largest file the Bot API accepts from users.
	MaxUploadBytes int64 = 2000 * 1024 * 1024

	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// CheckSize rejects sizes above maxBytes. A non-positive maxBytes uses MaxUploadBytes.
func CheckSize(size, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxUploadBytes
	}
	if size > maxBytes {
		return fmt.Errorf("%w: %s exceeds %s", ErrTooLarge, FormatSize(size), FormatSize(maxBytes))
	}
	return nil
}

// FormatSize renders a byte count the way it is shown to bot users.
func FormatSize(size int64) string {
	switch {
	case size < mib:
		return fmt.Sprintf("%.1f KB", float64(size)/kib)
	case size < gib:
		return fmt.Sprintf("%.1f MB", float64(size)/mib)
	default:
		return fmt.Sprintf("%.2f GB", float64(size)/gib)
	}
}
