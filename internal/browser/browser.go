// Package browser opens viewer pages in a local Chromium via rod.
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
)

// DefaultSnapshotTimeout bounds how long Snapshot waits for the page
// to finish rendering.
const DefaultSnapshotTimeout = 15 * time.Second

// Launcher starts Chromium instances for the viewer. An empty binary
// path lets rod resolve or download a managed browser.
type Launcher struct {
	binPath string
}

// NewLauncher creates a launcher with an optional Chromium binary path.
func NewLauncher(binPath string) *Launcher {
	return &Launcher{binPath: binPath}
}

func (b *Launcher) connect(headless bool) (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().Headless(headless)
	if b.binPath != "" {
		l = l.Bin(b.binPath)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return browser, l, nil
}

// Open opens url in a visible browser window. The returned function
// closes the window and the browser process.
func (b *Launcher) Open(url string) (func(), error) {
	browser, l, err := b.connect(false)
	if err != nil {
		return nil, err
	}

	if _, err := browser.Page(proto.TargetCreateTarget{URL: url}); err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	log.Info().Str("url", url).Msg("Viewer opened in browser")

	return func() {
		_ = browser.Close()
		l.Kill()
	}, nil
}

// Snapshot renders url headless and writes a PNG of the timeline
// element to outPath. The capture waits for the page's ready marker.
func (b *Launcher) Snapshot(url, outPath string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultSnapshotTimeout
	}

	browser, l, err := b.connect(true)
	if err != nil {
		return err
	}
	defer func() {
		_ = browser.Close()
		l.Kill()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	page = page.Timeout(timeout)

	// The viewer page sets data-ready once the timeline has rendered.
	if _, err := page.Element(`body[data-ready="1"]`); err != nil {
		return fmt.Errorf("timeline did not become ready: %w", err)
	}

	timeline, err := page.Element("#timeline")
	if err != nil {
		return fmt.Errorf("timeline element not found: %w", err)
	}

	data, err := timeline.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	log.Info().Str("url", url).Str("path", outPath).Msg("Snapshot written")
	return nil
}
