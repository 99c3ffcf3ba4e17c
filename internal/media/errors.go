package media

import "errors"

var (
	// ErrTooLarge indicates the payload exceeds the accepted upload size.
	ErrTooLarge = errors.New("media too large")
	// ErrUnsupportedFormat indicates the file is not a supported video format.
	ErrUnsupportedFormat = errors.New("unsupported video format")
)
