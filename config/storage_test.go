package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassForMime(t *testing.T) {
	testCases := []struct {
		name     string
		mimeType string
		expected FileClass
	}{
		{name: "jpeg_is_image", mimeType: "image/jpeg", expected: ClassImage},
		{name: "webp_is_image", mimeType: "image/webp", expected: ClassImage},
		{name: "mp4_is_video", mimeType: "video/mp4", expected: ClassVideo},
		{name: "pdf_is_document", mimeType: "application/pdf", expected: ClassDocument},
		{name: "plain_text_is_document", mimeType: "text/plain", expected: ClassDocument},
		{name: "unknown_is_document", mimeType: "application/x-unknown", expected: ClassDocument},
		{name: "empty_is_document", mimeType: "", expected: ClassDocument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassForMime(tc.mimeType))
		})
	}
}

func TestIsFileTypeAllowed(t *testing.T) {
	imageConfig := FileTypeFor(ClassImage)

	// A nil bundle permits everything.
	assert.True(t, IsFileTypeAllowed("application/x-anything", nil))

	assert.True(t, IsFileTypeAllowed("image/jpeg", &imageConfig))
	assert.False(t, IsFileTypeAllowed("application/pdf", &imageConfig))

	// The any class has an empty allowlist and accepts all types.
	anyConfig := FileTypeFor(ClassAny)
	assert.True(t, IsFileTypeAllowed("application/pdf", &anyConfig))
}

func TestFileTypeFor_UnknownFallsBackToAny(t *testing.T) {
	cfg := FileTypeFor(FileClass("bogus"))
	assert.Equal(t, FileTypeFor(ClassAny), cfg)
}

func TestPresetFor(t *testing.T) {
	preset, ok := PresetFor("thumbnail")
	require.True(t, ok)
	assert.Equal(t, 300, preset.Width)
	assert.Equal(t, 300, preset.Height)
	assert.Equal(t, "webp", preset.Format)

	// Lookup is case insensitive.
	upper, ok := PresetFor("THUMBNAIL")
	require.True(t, ok)
	assert.Equal(t, preset, upper)

	_, ok = PresetFor("nonexistent")
	assert.False(t, ok)
}

func TestPresetOriginalKeepsFormat(t *testing.T) {
	preset, ok := PresetFor("original")
	require.True(t, ok)
	assert.Zero(t, preset.Width)
	assert.Zero(t, preset.Height)
	assert.Empty(t, preset.Format)
}
