package utils

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Slugify reduces a filename base to lowercase ascii letters, digits and
// hyphens so it is safe in URLs and object keys.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "file"
	}
	return slug
}

// UniqueFileName builds a collision free storage name from an original
// filename: slugified basename, a random suffix and the given extension.
// The extension must include the leading dot.
func UniqueFileName(originalName, ext string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return Slugify(base) + "-" + suffix + ext
}

// ExtensionFor picks the storage extension for a file: the original one
// when present, otherwise a best effort guess from the mime type.
func ExtensionFor(originalName, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(originalName)); ext != "" {
		return ext
	}
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
