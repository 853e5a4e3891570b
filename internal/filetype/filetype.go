// Package filetype derives a file's type category and extension from its name.
// The category is assigned once at upload; renaming a file never re-runs this
// derivation, so the stored category survives extension changes.
package filetype

import (
	"path/filepath"
	"strings"

	"github.com/storebox/storebox/internal/model"
)

var documentExtensions = map[string]bool{
	"pdf": true, "doc": true, "docx": true, "txt": true,
	"xls": true, "xlsx": true, "csv": true, "rtf": true,
	"ods": true, "ppt": true, "odp": true, "md": true,
	"html": true, "htm": true, "epub": true, "pages": true,
	"fig": true, "psd": true, "ai": true, "indd": true,
	"xd": true, "sketch": true, "afdesign": true, "afphoto": true,
}

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "svg": true, "webp": true, "heic": true,
}

var videoExtensions = map[string]bool{
	"mp4": true, "avi": true, "mov": true, "mkv": true, "webm": true,
}

var audioExtensions = map[string]bool{
	"mp3": true, "wav": true, "ogg": true, "flac": true,
}

// FromName returns the type category and lowercase extension (without dot)
// for a filename. Files without an extension are categorized as "other".
func FromName(name string) (fileType, extension string) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return model.FileTypeOther, ""
	}

	switch {
	case documentExtensions[ext]:
		return model.FileTypeDocument, ext
	case imageExtensions[ext]:
		return model.FileTypeImage, ext
	case videoExtensions[ext]:
		return model.FileTypeVideo, ext
	case audioExtensions[ext]:
		return model.FileTypeAudio, ext
	default:
		return model.FileTypeOther, ext
	}
}
