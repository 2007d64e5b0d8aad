package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// decode parses data into an image. Multi-frame formats yield their first
// frame. EXIF orientation is not applied here.
func decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// Size is the pixel size of an image.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ProbeSize reads the image header and returns its stored dimensions without
// decoding pixels or applying orientation.
func ProbeSize(data []byte) (Size, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Size{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Size{Width: cfg.Width, Height: cfg.Height}, nil
}
