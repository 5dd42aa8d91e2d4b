package htmlexport

import (
	"log/slog"
	"time"

	"github.com/porticus-lab/go-html-export/internal/normalize"
	"github.com/porticus-lab/go-html-export/internal/raster"
)

// Generator is recorded as the creator of every produced document.
const Generator = "htmlexport"

// exporterConfig holds internal configuration for an Exporter.
type exporterConfig struct {
	chromePath    string
	timeout       time.Duration
	noSandbox     bool
	headless      string
	autoDownload  bool
	logger        *slog.Logger
	scale         float64
	viewportWidth int
	table         normalize.Table
	now           func() time.Time
}

func defaultConfig() exporterConfig {
	return exporterConfig{
		timeout:       30 * time.Second,
		headless:      "new",
		logger:        slog.Default(),
		scale:         raster.DefaultScale,
		viewportWidth: 1280,
		table:         normalize.DefaultTable(),
		now:           time.Now,
	}
}

// Option configures an [Exporter].
type Option func(*exporterConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *exporterConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single export.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *exporterConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *exporterConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload fetches a compatible Chromium build into the local
// cache when no browser path is configured.
func WithAutoDownload() Option {
	return func(c *exporterConfig) {
		c.autoDownload = true
	}
}

// WithLogger sets the logger used for export diagnostics. Defaults to
// [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(c *exporterConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOversampling sets the device pixel ratio of captures. Defaults
// to 4. Values below 1 are ignored.
func WithOversampling(scale float64) Option {
	return func(c *exporterConfig) {
		if scale >= 1 {
			c.scale = scale
		}
	}
}

// WithViewportWidth sets the browser window width in CSS pixels, which
// determines the layout width of captured content. Defaults to 1280.
func WithViewportWidth(px int) Option {
	return func(c *exporterConfig) {
		if px > 0 {
			c.viewportWidth = px
		}
	}
}

// WithClock replaces the clock used for generation dates.
func WithClock(now func() time.Time) Option {
	return func(c *exporterConfig) {
		if now != nil {
			c.now = now
		}
	}
}
