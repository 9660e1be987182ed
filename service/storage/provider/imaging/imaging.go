// Package imaging is the transformation pipeline applied to uploaded
// images: decode, aspect preserving downscale, re-encode.
package imaging

import (
	"bytes"
	"image"

	// Imported for gif codec
	"image/gif"
	"image/jpeg"

	// Imported for png codec
	"image/png"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	// Imported for webp decoding
	_ "golang.org/x/image/webp"

	"github.com/loretops/coinvest-docs/config"
)

// Transform decodes content, scales it to fit within opts.Width x
// opts.Height (never upscaling, preserving aspect ratio) and re-encodes it
// in opts.Format. It returns the output bytes and the extension matching
// the chosen format. An empty format keeps the source format; zero
// dimensions skip resizing.
func Transform(content []byte, opts config.ImageOptions) ([]byte, string, error) {
	img, sourceFormat, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to decode image")
	}

	if opts.Width > 0 || opts.Height > 0 {
		img = fit(img, opts.Width, opts.Height)
	}

	format := opts.Format
	if format == "" {
		format = normalizeFormat(sourceFormat)
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = config.DefaultImageQuality
	}

	out, ext, err := encode(img, format, quality)
	if err != nil {
		return nil, "", err
	}
	return out, ext, nil
}

// fit scales img down to fit within the given bounds. A zero bound on one
// axis leaves that axis unconstrained.
func fit(img image.Image, width, height int) image.Image {
	if width <= 0 {
		width = img.Bounds().Dx()
	}
	if height <= 0 {
		height = img.Bounds().Dy()
	}
	// resize.Thumbnail preserves aspect ratio and never upscales.
	return resize.Thumbnail(uint(width), uint(height), img, resize.Lanczos3)
}

func normalizeFormat(sourceFormat string) string {
	switch sourceFormat {
	case "jpeg", "png", "gif", "webp":
		return sourceFormat
	default:
		return config.DefaultImageFormat
	}
}

func encode(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	var err error
	var ext string

	switch format {
	case "jpeg", "jpg":
		ext = ".jpg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "png":
		ext = ".png"
		err = png.Encode(&buf, img)
	case "gif":
		ext = ".gif"
		err = gif.Encode(&buf, img, nil)
	case "webp":
		ext = ".webp"
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)})
	default:
		return nil, "", errors.Errorf("unsupported image format %q", format)
	}

	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to encode image as %s", format)
	}
	return buf.Bytes(), ext, nil
}
