package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/thumbnailer/internal/logging"
)

// DefaultQuality is the JPEG quality of every encoded thumbnail.
const DefaultQuality = 75

// Transformer turns encoded source images into encoded JPEG thumbnails.
//
// A Transformer is immutable after New and safe for concurrent use; every
// call works on its own decoded copy.
type Transformer struct {
	bounds     Bounds
	quality    int
	background color.NRGBA
	logger     logging.Interface
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithBounds sets the inclusive range for every requested dimension.
func WithBounds(b Bounds) Option {
	return func(t *Transformer) { t.bounds = b }
}

// WithQuality sets the JPEG quality (1-100).
func WithQuality(q int) Option {
	return func(t *Transformer) { t.quality = q }
}

// WithBackground sets the color transparent pixels are flattened onto.
func WithBackground(c color.Color) Option {
	return func(t *Transformer) { t.background = color.NRGBAModel.Convert(c).(color.NRGBA) }
}

// WithLogger sets the logger used for per-transform debug output.
func WithLogger(l logging.Interface) Option {
	return func(t *Transformer) { t.logger = l }
}

// New returns a Transformer with DefaultBounds, DefaultQuality and a white
// background unless overridden.
func New(opts ...Option) *Transformer {
	t := &Transformer{
		bounds:     DefaultBounds(),
		quality:    DefaultQuality,
		background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ParseBackground parses a "#rrggbb" color for WithBackground.
func ParseBackground(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid background color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Bounds returns the configured dimension range.
func (t *Transformer) Bounds() Bounds {
	return t.bounds
}

// Apply dispatches p to ResizeLongEdge (never enlarging) or Fit.
func (t *Transformer) Apply(data []byte, p Params) ([]byte, error) {
	switch p.Kind {
	case KindLongEdge:
		return t.ResizeLongEdge(data, p.LongEdge, true)
	case KindFit:
		return t.Fit(data, p.Width, p.Height)
	default:
		return nil, fmt.Errorf("unknown transform kind %d", p.Kind)
	}
}

// ResizeLongEdge scales the image so its longer side is longEdge pixels and
// the aspect ratio is preserved. A square image counts as landscape.
//
// When dontEnlarge is set and longEdge exceeds the longer side, data is
// returned unchanged: same bytes, same format. A request equal to the longer
// side is still oriented and re-encoded.
func (t *Transformer) ResizeLongEdge(data []byte, longEdge int, dontEnlarge bool) ([]byte, error) {
	if err := t.bounds.Check("long-edge", longEdge); err != nil {
		return nil, err
	}

	img, err := t.load(data)
	if err != nil {
		return nil, err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	if dontEnlarge && longEdge > max(w, h) {
		t.logger.Debugf("Not enlarging %dx%d to long edge %d", w, h, longEdge)
		return data, nil
	}

	var resized *image.NRGBA
	if w >= h {
		resized = imaging.Resize(img, longEdge, 0, imaging.Lanczos)
	} else {
		resized = imaging.Resize(img, 0, longEdge, imaging.Lanczos)
	}

	out, err := t.encode(resized)
	if err != nil {
		return nil, err
	}
	t.logger.Debugf("Resized %dx%d %d bytes to %dx%d %d bytes",
		w, h, len(data), resized.Bounds().Dx(), resized.Bounds().Dy(), len(out))
	return out, nil
}

// load decodes data and rotates it upright.
func (t *Transformer) load(data []byte) (image.Image, error) {
	img, _, err := decode(data)
	if err != nil {
		return nil, err
	}
	return orient(img, readOrientation(data)), nil
}

// flatten composites img over the background when it has transparency.
func (t *Transformer) flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), t.background)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

func (t *Transformer) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, t.flatten(img), imaging.JPEG, imaging.JPEGQuality(t.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
