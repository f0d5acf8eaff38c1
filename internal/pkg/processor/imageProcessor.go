package processor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// ImageProcessor normalizes uploaded event images: orientation fixed,
// oversized pictures scaled down, output re-encoded as JPEG so the store
// only ever serves one format.
type ImageProcessor struct {
	maxWidth int
}

func NewImageProcessor(maxWidth int) *ImageProcessor {
	return &ImageProcessor{maxWidth: maxWidth}
}

func (p *ImageProcessor) Normalize(data io.Reader) (io.Reader, error) {
	img, err := imaging.Decode(data, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if p.maxWidth > 0 && img.Bounds().Dx() > p.maxWidth {
		// Height 0 preserves the aspect ratio.
		img = imaging.Resize(img, p.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &buf, nil
}
