package mediatype

import (
	"strings"
)

// Default is returned for files without an extension or with an unknown one.
const Default = "application/octet-stream"

var types = map[string]string{
	// Web
	"html":        "text/html",
	"htm":         "text/html",
	"css":         "text/css",
	"js":          "text/javascript",
	"mjs":         "text/javascript",
	"json":        "application/json",
	"xhtml":       "application/xhtml+xml",
	"xml":         "application/xml",
	"webmanifest": "application/manifest+json",

	// Documents
	"md":  "text/markdown",
	"pdf": "application/pdf",
	"txt": "text/plain",

	// Images
	"avif": "image/avif",
	"gif":  "image/gif",
	"ico":  "image/vnd.microsoft.icon",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"heif": "image/heif",
	"heic": "image/heic",
	"jxl":  "image/jxl",

	// Audio
	"wav":  "audio/wav",
	"weba": "audio/webm",
	"mp3":  "audio/mpeg",
	"oga":  "audio/ogg",
	"opus": "audio/ogg",

	// Video & media containers
	"mp4":  "video/mp4",
	"mpeg": "video/mpeg",
	"ogv":  "video/ogg",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"ogx":  "application/ogg",

	// Fonts
	"ttf":   "font/ttf",
	"woff":  "font/woff",
	"woff2": "font/woff2",
}

// FromPath resolves the media type for a file path from its extension.
func FromPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return Default
	}
	if t, ok := types[path[i+1:]]; ok {
		return t
	}
	return Default
}
