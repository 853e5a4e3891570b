package filetype

import (
	"testing"

	"github.com/storebox/storebox/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFromName(t *testing.T) {
	tests := []struct {
		name      string
		wantType  string
		wantExt   string
	}{
		{"photo.jpg", model.FileTypeImage, "jpg"},
		{"photo.JPEG", model.FileTypeImage, "jpeg"},
		{"report.pdf", model.FileTypeDocument, "pdf"},
		{"notes.md", model.FileTypeDocument, "md"},
		{"design.sketch", model.FileTypeDocument, "sketch"},
		{"clip.mp4", model.FileTypeVideo, "mp4"},
		{"song.flac", model.FileTypeAudio, "flac"},
		{"archive.zip", model.FileTypeOther, "zip"},
		{"binary.exe", model.FileTypeOther, "exe"},
		{"no-extension", model.FileTypeOther, ""},
		{"trailing-dot.", model.FileTypeOther, ""},
		{"many.dots.tar.gz", model.FileTypeOther, "gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotExt := FromName(tt.name)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantExt, gotExt)
		})
	}
}
