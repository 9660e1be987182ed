package config

import "strings"

// FileClass is the coarse classification of an upload. It drives which
// storage pipeline runs and which allowlist and size ceiling apply.
type FileClass string

const (
	ClassDocument FileClass = "document"
	ClassImage    FileClass = "image"
	ClassVideo    FileClass = "video"
	ClassAny      FileClass = "any"
)

// FileTypeConfig describes the fixed policy for one file class.
type FileTypeConfig struct {
	MimeTypes    []string
	Extensions   []string
	MaxSizeBytes int64
	Directory    string
}

// ImageOptions is a resize and re-encode instruction for uploaded images.
// Zero Width/Height means no resizing. Format is one of webp, jpeg, png.
type ImageOptions struct {
	Width   int
	Height  int
	Quality int
	Format  string
}

// DefaultImageQuality applies when an ImageOptions carries no quality.
const DefaultImageQuality = 80

// DefaultImageFormat applies when an ImageOptions carries no format.
const DefaultImageFormat = "webp"

var fileTypes = map[FileClass]FileTypeConfig{
	ClassDocument: {
		MimeTypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"text/plain",
			"text/csv",
		},
		Extensions:   []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".txt", ".csv"},
		MaxSizeBytes: 10 * 1024 * 1024,
		Directory:    "documents",
	},
	ClassImage: {
		MimeTypes:    []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		Extensions:   []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
		MaxSizeBytes: 5 * 1024 * 1024,
		Directory:    "images",
	},
	ClassVideo: {
		MimeTypes:    []string{"video/mp4", "video/webm", "video/quicktime"},
		Extensions:   []string{".mp4", ".webm", ".mov"},
		MaxSizeBytes: 100 * 1024 * 1024,
		Directory:    "videos",
	},
	ClassAny: {
		MimeTypes:    []string{},
		Extensions:   []string{},
		MaxSizeBytes: 20 * 1024 * 1024,
		Directory:    "files",
	},
}

var imagePresets = map[string]ImageOptions{
	"thumbnail": {Width: 300, Height: 300, Quality: 70, Format: "webp"},
	"medium":    {Width: 800, Height: 600, Quality: 80, Format: "webp"},
	"large":     {Width: 1600, Height: 1200, Quality: 85, Format: "webp"},
	"original":  {Quality: 90},
}

// FileTypeFor returns the fixed policy bundle for a class. Unknown classes
// fall back to the permissive "any" bundle.
func FileTypeFor(class FileClass) FileTypeConfig {
	if cfg, ok := fileTypes[class]; ok {
		return cfg
	}
	return fileTypes[ClassAny]
}

// ClassForMime classifies a mime type. Prefix rules: image/* is an image,
// video/* is a video, anything else is a document.
func ClassForMime(mimeType string) FileClass {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return ClassImage
	case strings.HasPrefix(mimeType, "video/"):
		return ClassVideo
	default:
		return ClassDocument
	}
}

// IsFileTypeAllowed reports whether a mime type passes the allowlist of a
// class bundle. A nil bundle or an empty allowlist permits everything.
func IsFileTypeAllowed(mimeType string, typeConfig *FileTypeConfig) bool {
	if typeConfig == nil || len(typeConfig.MimeTypes) == 0 {
		return true
	}
	for _, allowed := range typeConfig.MimeTypes {
		if allowed == mimeType {
			return true
		}
	}
	return false
}

// PresetFor looks up an optimization preset by name, case insensitively.
// The second return is false when the name is unknown.
func PresetFor(name string) (ImageOptions, bool) {
	preset, ok := imagePresets[strings.ToLower(name)]
	return preset, ok
}

// PresetNames lists the configured preset names.
func PresetNames() []string {
	names := make([]string, 0, len(imagePresets))
	for name := range imagePresets {
		names = append(names, name)
	}
	return names
}
