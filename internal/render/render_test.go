// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refminer/pkg/types"
)

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in        string
		wantName  string
		wantValue string
	}{
		{"--headless", "headless", ""},
		{"--no-sandbox", "no-sandbox", ""},
		{"--window-size=1280,800", "window-size", "1280,800"},
		{"-single-dash", "single-dash", ""},
		{"  --lang=en-US  ", "lang", "en-US"},
		{"", "", ""},
		{"--", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, value := ParseFlag(tt.in)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "document.html")
	var gotURL string
	r := Func(func(_ context.Context, url string) (string, error) {
		gotURL = url
		return "<html><body>ok</body></html>", nil
	})

	html, err := Capture(context.Background(), r, "https://example.org/a", path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/a", gotURL)
	assert.Contains(t, html, "ok")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, html, string(data))
}

func TestCaptureRenderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "document.html")
	r := Func(func(context.Context, string) (string, error) {
		return "", errors.New("navigation timed out")
	})

	_, err := Capture(context.Background(), r, "https://example.org/a", path)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing is written when rendering fails")
}

func TestNewRodRendererDefaults(t *testing.T) {
	r := NewRodRenderer(types.BrowserConfig{}, zerolog.Nop())
	assert.Equal(t, DefaultSettleDelay, r.cfg.SettleDelay)
	assert.Equal(t, types.DefaultBrowserFlags, r.cfg.Flags)

	r = NewRodRenderer(types.BrowserConfig{SettleDelay: time.Second, Flags: []string{}}, zerolog.Nop())
	assert.Equal(t, time.Second, r.cfg.SettleDelay)
	assert.Empty(t, r.cfg.Flags)
}

func TestLauncherFlags(t *testing.T) {
	r := NewRodRenderer(types.BrowserConfig{
		Flags: []string{"--no-sandbox", "--headless", "--window-size=1280,800", ""},
	}, zerolog.Nop())

	l := r.launcher()
	assert.True(t, l.Has(flags.NoSandbox))
	assert.True(t, l.Has(flags.Headless))

	assert.Equal(t, "1280,800", l.Get(flags.Flag("window-size")))
}

func TestLauncherHeadful(t *testing.T) {
	r := NewRodRenderer(types.BrowserConfig{Flags: []string{}}, zerolog.Nop())
	assert.False(t, r.launcher().Has(flags.Headless))
}
