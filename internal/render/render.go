// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render captures the rendered markup of a web page. Acquisition
// strategies depend on the Renderer interface only; RodRenderer drives a
// headless Chrome through rod, one browser session per call.
package render

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"

	"github.com/pdiddy/refminer/pkg/types"
)

// DefaultSettleDelay is the fixed wait after navigation.
const DefaultSettleDelay = 10 * time.Second

// Renderer navigates to a URL, waits for the page to settle, and returns the
// full rendered page source.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Func adapts a plain function to the Renderer interface.
type Func func(ctx context.Context, url string) (string, error)

// Render calls f.
func (f Func) Render(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Capture renders url and writes the markup to path. It returns the markup.
func Capture(ctx context.Context, r Renderer, url, path string) (string, error) {
	html, err := r.Render(ctx, url)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return html, nil
}

// RodRenderer launches a fresh Chrome per Render call and disposes of it
// before returning. Sessions are never pooled.
type RodRenderer struct {
	cfg    types.BrowserConfig
	logger zerolog.Logger
}

// NewRodRenderer creates a renderer from cfg. A zero SettleDelay uses
// DefaultSettleDelay; nil Flags use types.DefaultBrowserFlags.
func NewRodRenderer(cfg types.BrowserConfig, logger zerolog.Logger) *RodRenderer {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.Flags == nil {
		cfg.Flags = types.DefaultBrowserFlags
	}
	return &RodRenderer{cfg: cfg, logger: logger}
}

// Render implements Renderer.
func (r *RodRenderer) Render(ctx context.Context, url string) (string, error) {
	l := r.launcher()
	wsURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("render: launch: %w", err)
	}
	defer l.Cleanup()

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return "", fmt.Errorf("render: connect: %w", err)
	}
	defer b.Close()

	page, err := stealth.Page(b)
	if err != nil {
		return "", fmt.Errorf("render: create page: %w", err)
	}
	defer page.Close()

	r.logger.Debug().Str("url", url).Dur("settle", r.cfg.SettleDelay).Msg("render: navigating")
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("render: navigate %s: %w", url, err)
	}

	// Fixed settle delay; pages here finish loading through scripts that
	// do not signal completion.
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(r.cfg.SettleDelay):
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("render: page source %s: %w", url, err)
	}
	return html, nil
}

func (r *RodRenderer) launcher() *launcher.Launcher {
	l := launcher.New().Headless(false)
	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	}
	for _, f := range r.cfg.Flags {
		name, value := ParseFlag(f)
		switch name {
		case "":
			continue
		case string(flags.NoSandbox):
			l = l.NoSandbox(true)
		default:
			if value == "" {
				l = l.Set(flags.Flag(name))
			} else {
				l = l.Set(flags.Flag(name), value)
			}
		}
	}
	return l
}

// ParseFlag splits a command-line switch such as "--window-size=1280,800"
// into its name and value.
func ParseFlag(f string) (name, value string) {
	f = strings.TrimLeft(strings.TrimSpace(f), "-")
	if f == "" {
		return "", ""
	}
	name, value, _ = strings.Cut(f, "=")
	return name, value
}
