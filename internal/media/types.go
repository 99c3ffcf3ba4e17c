package media

import (
	"mime"
	"path"
	"strings"
)

// DefaultVideoMime is served when neither the declared type nor the file name
// identify a media type.
const DefaultVideoMime = "video/mp4"

// SupportedVideoExtensions lists the file extensions accepted for upload.
var SupportedVideoExtensions = []string{
	"mp4", "avi", "mkv", "mov", "wmv", "flv", "webm", "m4v",
	"mpg", "mpeg", "ogv", "3gp", "rm", "rmvb", "asf", "divx",
}

var supportedVideoExtensions = func() map[string]struct{} {
	set := make(map[string]struct{}, len(SupportedVideoExtensions))
	for _, ext := range SupportedVideoExtensions {
		set[ext] = struct{}{}
	}
	return set
}()

var videoMimeByExtension = map[string]string{
	"mp4":  "video/mp4",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
	"mov":  "video/quicktime",
	"wmv":  "video/x-ms-wmv",
	"flv":  "video/x-flv",
	"webm": "video/webm",
	"m4v":  "video/mp4",
	"mpg":  "video/mpeg",
	"mpeg": "video/mpeg",
	"ogv":  "video/ogg",
	"3gp":  "video/3gpp",
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	ext := path.Ext(strings.TrimSpace(name))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsVideoFilename reports whether name carries a supported video extension.
func IsVideoFilename(name string) bool {
	_, ok := supportedVideoExtensions[Extension(name)]
	return ok
}

// IsMediaType reports whether mimeType is a video or audio type.
func IsMediaType(mimeType string) bool {
	mt := normalizeMime(mimeType)
	return strings.HasPrefix(mt, "video/") || strings.HasPrefix(mt, "audio/")
}

// ResolveMime picks the Content-Type for a stored file. A declared media type
// wins; otherwise the extension decides, and DefaultVideoMime is the last resort.
func ResolveMime(declared, filename string) string {
	if IsMediaType(declared) {
		return normalizeMime(declared)
	}
	ext := Extension(filename)
	if ext != "" {
		if guessed := normalizeMime(mime.TypeByExtension("." + ext)); IsMediaType(guessed) {
			return guessed
		}
		if mapped, ok := videoMimeByExtension[ext]; ok {
			return mapped
		}
	}
	return DefaultVideoMime
}

func normalizeMime(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return strings.ToLower(value)
}
