package imaging

import (
	"github.com/disintegration/imaging"
)

// Fit scales and center-crops the image so the output is exactly
// width x height. The source is scaled to cover the box (the larger of the
// two scale factors), then the excess on the long axis is trimmed evenly
// from both sides. No letterboxing.
//
// Fit enlarges smaller sources; the output size never depends on the input.
func (t *Transformer) Fit(data []byte, width, height int) ([]byte, error) {
	if err := t.bounds.Check("width", width); err != nil {
		return nil, err
	}
	if err := t.bounds.Check("height", height); err != nil {
		return nil, err
	}

	img, err := t.load(data)
	if err != nil {
		return nil, err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	fitted := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	out, err := t.encode(fitted)
	if err != nil {
		return nil, err
	}
	t.logger.Debugf("Fitted %dx%d %d bytes to %dx%d %d bytes", w, h, len(data), width, height, len(out))
	return out, nil
}
