package compress

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path"
	"strings"
)

// Resizer is the built-in Compressor: it downscales images so that neither
// dimension exceeds MaxDimension and re-encodes them. Like the original
// compression tool, re-encoded JPEG output is always named with a ".jpg"
// suffix regardless of the input spelling (".jpeg", ".JPG", ...), so the
// output name is not guaranteed to equal the input name.
type Resizer struct {
	MaxDimension int
}

func NewResizer(maxDimension int) *Resizer {
	return &Resizer{MaxDimension: maxDimension}
}

func (r *Resizer) Compress(_ context.Context, name string, data []byte, _ string) (*Artifact, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, r.MaxDimension)

	var buf bytes.Buffer
	var outExt, outType string

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
		outExt, outType = ".png", "image/png"
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
		outExt, outType = ".jpg", "image/jpeg"
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}

	base := strings.TrimSuffix(name, path.Ext(name))

	return &Artifact{
		Name:        base + outExt,
		Data:        buf.Bytes(),
		ContentType: outType,
	}, nil
}

// downscale shrinks img so that max(width, height) <= limit, keeping aspect
// ratio. Nearest-neighbor is good enough for thumbnail-sized output.
func downscale(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if limit <= 0 || (w <= limit && h <= limit) {
		return img
	}

	scale := float64(limit) / float64(w)
	if h > w {
		scale = float64(limit) / float64(h)
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	for y := 0; y < nh; y++ {
		sy := b.Min.Y + y*h/nh
		for x := 0; x < nw; x++ {
			sx := b.Min.X + x*w/nw
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}
