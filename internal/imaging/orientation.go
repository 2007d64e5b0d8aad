package imaging

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// orientOp is one flip or rotation step.
type orientOp func(image.Image) *image.NRGBA

// orientations maps the EXIF Orientation tag (0x0112) to the steps that bring
// the stored pixels upright, per CIPA DC-008-2012. Rotations are
// counter-clockwise.
var orientations = map[int][]orientOp{
	1: nil,
	2: {imaging.FlipH},
	3: {imaging.Rotate180},
	4: {imaging.FlipV},
	5: {imaging.FlipH, imaging.Rotate90},
	6: {imaging.Rotate270},
	7: {imaging.FlipV, imaging.Rotate90},
	8: {imaging.Rotate90},
}

// readOrientation returns the EXIF orientation of data, or 1 when the tag is
// absent, unreadable or out of range.
func readOrientation(data []byte) (orientation int) {
	orientation = 1
	defer func() {
		// goexif can panic on truncated IFDs.
		if recover() != nil {
			orientation = 1
		}
	}()

	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	if _, ok := orientations[v]; !ok {
		return 1
	}
	return v
}

// orient applies the steps for orientation to img. Unknown values leave img
// untouched.
func orient(img image.Image, orientation int) image.Image {
	for _, op := range orientations[orientation] {
		img = op(img)
	}
	return img
}
