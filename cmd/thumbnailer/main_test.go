package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/thumbnailer/internal/config"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "src.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CACHE_BUCKET", "")
	var out bytes.Buffer
	root := newRootCmd(config.NewViper(), &out)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "thumbnailer dev")
	assert.Contains(t, out, "Git commit:")
}

func TestResize_ToFile(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, 400, 200)
	dst := filepath.Join(dir, "out", "thumb.jpg")

	_, err := run(t, "resize", src, "200", "-o", dst)
	require.NoError(t, err)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestFit_ToStdout(t *testing.T) {
	src := writePNG(t, t.TempDir(), 400, 200)

	out, err := run(t, "fit", src, "150", "150")
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader([]byte(out)))
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestResize_InvalidArguments(t *testing.T) {
	src := writePNG(t, t.TempDir(), 400, 200)

	tests := []struct {
		name string
		args []string
	}{
		{"not a number", []string{"resize", src, "big"}},
		{"below minimum", []string{"resize", src, "99"}},
		{"above maximum", []string{"resize", src, "2001"}},
		{"missing source", []string{"resize", filepath.Join(t.TempDir(), "nope.png"), "200"}},
		{"reserved scheme", []string{"resize", "http://example.com/a.png", "200"}},
		{"fit missing height", []string{"fit", src, "200"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestInfo(t *testing.T) {
	src := writePNG(t, t.TempDir(), 320, 240)

	out, err := run(t, "info", src)
	require.NoError(t, err)

	var got struct {
		URI    string `json:"uri"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 320, got.Width)
	assert.Equal(t, 240, got.Height)
	assert.Equal(t, "png", got.Format)
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	src := writePNG(t, t.TempDir(), 400, 200)
	t.Setenv("JPEG_QUALITY", "101")

	var out bytes.Buffer
	root := newRootCmd(config.NewViper(), &out)
	root.SetArgs([]string{"resize", src, "200"})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
	assert.Zero(t, out.Len())
}
