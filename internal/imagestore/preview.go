package imagestore

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/jan-sykora/api-demo/internal/api"
)

const (
	previewMaxWidth  = 200
	previewMaxHeight = 200
)

// previewSize fits width x height into the preview box keeping the aspect
// ratio. Images already inside the box keep their size.
func previewSize(width, height int) (int, int) {
	if width <= previewMaxWidth && height <= previewMaxHeight {
		return width, height
	}
	w, h := previewMaxWidth, previewMaxHeight
	if width > height {
		h = height * previewMaxWidth / width
	} else {
		w = width * previewMaxHeight / height
	}
	return max(w, 1), max(h, 1)
}

func generatePreview(data []byte) (*api.ImagePreview, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := previewSize(bounds.Dx(), bounds.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return &api.ImagePreview{Data: buf.Bytes(), MimeType: "image/png"}, nil
}
