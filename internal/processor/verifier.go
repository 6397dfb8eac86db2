package processor

import (
	"bytes"
	"fmt"
	_ "image/gif"  // GIF format support
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/webp" // WebP format support
)

const (
	defaultMinBytes = 1024
	minDimension    = 16
)

// ImageVerifier rejects downloads that are too small or do not decode as an image,
// such as HTML error pages served with a 200.
type ImageVerifier struct {
	logger   *zap.Logger
	minBytes int
}

// NewImageVerifier creates a verifier with the default size floor
func NewImageVerifier(logger *zap.Logger) *ImageVerifier {
	return &ImageVerifier{logger: logger, minBytes: defaultMinBytes}
}

// Verify decodes data and returns its dimensions
func (v *ImageVerifier) Verify(data []byte) (int, int, error) {
	if len(data) < v.minBytes {
		return 0, 0, fmt.Errorf("download too small: %s (minimum %s)",
			humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(v.minBytes)))
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() < minDimension || bounds.Dy() < minDimension {
		return 0, 0, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	v.logger.Debug("Image verified",
		zap.Int("w", bounds.Dx()),
		zap.Int("h", bounds.Dy()),
		zap.String("size", humanize.Bytes(uint64(len(data)))))
	return bounds.Dx(), bounds.Dy(), nil
}
