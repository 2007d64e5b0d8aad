package imaging

import (
	"image"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// PaletteSize is the number of swatches Describe reports.
	PaletteSize = 5

	// Images are shrunk to fit this box before their colors are counted.
	paletteSampleEdge = 64

	// Channels are grouped into buckets of this width.
	paletteBucket = 16
)

// Swatch is one color of an image's palette.
type Swatch struct {
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// Info describes a stored image. Width and Height are as stored, before any
// EXIF orientation is applied.
type Info struct {
	Size
	Format      string   `json:"format"`
	ColorDepth  string   `json:"color_depth"`
	HasAlpha    bool     `json:"has_alpha"`
	Orientation int      `json:"orientation"`
	SizeBytes   int      `json:"size_bytes"`
	Palette     []Swatch `json:"palette"`
}

// Describe decodes data and reports its metadata and dominant colors.
func Describe(data []byte) (Info, error) {
	img, format, err := decode(data)
	if err != nil {
		return Info{}, err
	}

	b := img.Bounds()
	info := Info{
		Size:        Size{Width: b.Dx(), Height: b.Dy()},
		Format:      format,
		ColorDepth:  "8-bit",
		Orientation: readOrientation(data),
		SizeBytes:   len(data),
	}
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		info.ColorDepth = "16-bit"
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		info.HasAlpha = !o.Opaque()
	}
	info.Palette = palette(img, PaletteSize)
	return info, nil
}

type bucket struct {
	r, g, b, n int
}

// palette returns up to count of the most common colors in img, most common
// first. Similar colors share a bucket and are reported as their mean.
// Fully transparent pixels are ignored.
func palette(img image.Image, count int) []Swatch {
	b := img.Bounds()
	var sample *image.NRGBA
	if b.Dx() > paletteSampleEdge || b.Dy() > paletteSampleEdge {
		sample = imaging.Fit(img, paletteSampleEdge, paletteSampleEdge, imaging.Box)
	} else {
		sample = imaging.Clone(img)
	}

	buckets := make(map[uint32]*bucket)
	total := 0
	pix := sample.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, bl, a := int(pix[i]), int(pix[i+1]), int(pix[i+2]), pix[i+3]
		if a == 0 {
			continue
		}
		key := uint32(r/paletteBucket)<<16 | uint32(g/paletteBucket)<<8 | uint32(bl/paletteBucket)
		bk := buckets[key]
		if bk == nil {
			bk = &bucket{}
			buckets[key] = bk
		}
		bk.r += r
		bk.g += g
		bk.b += bl
		bk.n++
		total++
	}

	swatches := make([]Swatch, 0, len(buckets))
	for _, bk := range buckets {
		n := float64(bk.n)
		c := colorful.Color{R: float64(bk.r) / n / 255, G: float64(bk.g) / n / 255, B: float64(bk.b) / n / 255}
		swatches = append(swatches, Swatch{Hex: c.Hex(), Percentage: n / float64(total) * 100})
	}

	sort.Slice(swatches, func(i, j int) bool {
		if swatches[i].Percentage != swatches[j].Percentage {
			return swatches[i].Percentage > swatches[j].Percentage
		}
		return swatches[i].Hex < swatches[j].Hex
	})
	if len(swatches) > count {
		swatches = swatches[:count]
	}
	return swatches
}
