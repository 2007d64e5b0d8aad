package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestDescribe_PNG(t *testing.T) {
	data := encodePNG(t, newSolidImage(40, 20, red))

	info, err := Describe(data)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Width != 40 || info.Height != 20 {
		t.Errorf("got %dx%d, want 40x20", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format = %q, want png", info.Format)
	}
	if info.HasAlpha {
		t.Error("opaque image reported alpha")
	}
	if info.ColorDepth != "8-bit" {
		t.Errorf("ColorDepth = %q, want 8-bit", info.ColorDepth)
	}
	if info.Orientation != 1 {
		t.Errorf("Orientation = %d, want 1", info.Orientation)
	}
	if info.SizeBytes != len(data) {
		t.Errorf("SizeBytes = %d, want %d", info.SizeBytes, len(data))
	}
	if len(info.Palette) != 1 || info.Palette[0].Hex != "#ff0000" || info.Palette[0].Percentage != 100 {
		t.Errorf("Palette = %+v, want a single #ff0000 at 100%%", info.Palette)
	}
}

func TestDescribe_JPEGKeepsStoredSize(t *testing.T) {
	data := withOrientation(t, encodeJPEG(t, newSolidImage(60, 30, blue)), 6)

	info, err := Describe(data)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Format != "jpeg" {
		t.Errorf("Format = %q, want jpeg", info.Format)
	}
	if info.Width != 60 || info.Height != 30 {
		t.Errorf("got %dx%d, want the stored 60x30", info.Width, info.Height)
	}
	if info.Orientation != 6 {
		t.Errorf("Orientation = %d, want 6", info.Orientation)
	}
}

func TestDescribe_Alpha(t *testing.T) {
	img := newSolidImage(10, 10, green)
	for y := 0; y < 10; y++ {
		for x := 0; x < 5; x++ {
			img.Set(x, y, color.NRGBA{})
		}
	}

	info, err := Describe(encodePNG(t, img))
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !info.HasAlpha {
		t.Error("transparent image reported no alpha")
	}
	// Fully transparent pixels do not count towards the palette.
	if len(info.Palette) != 1 || info.Palette[0].Hex != "#00ff00" || info.Palette[0].Percentage != 100 {
		t.Errorf("Palette = %+v, want a single #00ff00 at 100%%", info.Palette)
	}
}

func TestDescribe_Invalid(t *testing.T) {
	if _, err := Describe([]byte("not an image")); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestPalette_Order(t *testing.T) {
	// 3/4 blue, 1/4 red.
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x < 10 {
				img.Set(x, y, red)
			} else {
				img.Set(x, y, blue)
			}
		}
	}

	got := palette(img, PaletteSize)
	if len(got) != 2 {
		t.Fatalf("got %d swatches, want 2: %+v", len(got), got)
	}
	if got[0].Hex != "#0000ff" || got[1].Hex != "#ff0000" {
		t.Errorf("order = %s, %s; want #0000ff, #ff0000", got[0].Hex, got[1].Hex)
	}
	if math.Abs(got[0].Percentage-75) > 0.01 || math.Abs(got[1].Percentage-25) > 0.01 {
		t.Errorf("percentages = %.2f, %.2f; want 75, 25", got[0].Percentage, got[1].Percentage)
	}
}

func TestPalette_GroupsNearbyColors(t *testing.T) {
	img := newSolidImage(20, 20, color.NRGBA{200, 100, 50, 255})
	for x := 0; x < 20; x++ {
		img.Set(x, 0, color.NRGBA{202, 102, 52, 255})
	}

	got := palette(img, PaletteSize)
	if len(got) != 1 {
		t.Fatalf("got %d swatches, want 1: %+v", len(got), got)
	}
}

func TestPalette_Limit(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 1))
	for x := 0; x < 100; x++ {
		img.Set(x, 0, color.NRGBA{uint8(x * 2), 0, 0, 255})
	}

	if got := palette(img, 3); len(got) != 3 {
		t.Errorf("got %d swatches, want 3", len(got))
	}
}

func TestPalette_LargeImageIsSampled(t *testing.T) {
	got := palette(newSplitImage(800, 400), PaletteSize)
	if len(got) < 2 {
		t.Fatalf("got %d swatches, want at least 2", len(got))
	}
	if got[0].Percentage < 40 || got[1].Percentage < 40 {
		t.Errorf("halves should dominate, got %+v", got[:2])
	}
}
