package logging

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"", LevelError},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" Error ", LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: LevelWarn, Console: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.WithField("uri", "s3://b/k.jpg").WithError(errors.New("boom")).Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, `"uri":"s3://b/k.jpg"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestNewLogger_DebugUsesConsoleEncoder(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Debug: true, Level: LevelError, Console: &buf})
	require.NoError(t, err)

	logger.Debugf("resized %dx%d", 10, 20)
	assert.Contains(t, buf.String(), "resized 10x20")
	assert.NotContains(t, buf.String(), `"msg"`)
}

func TestNewLogger_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "thumbnailer.log")
	logger, err := NewLogger(Config{Level: LevelInfo, File: path, Console: &buf})
	require.NoError(t, err)

	logger.Info("to both")
	require.NoError(t, logger.Sync())
	assert.FileExists(t, path)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: Level("loud")})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() {
		l.WithField("k", 1).WithError(errors.New("x")).Errorf("nothing %d", 1)
	})
}
