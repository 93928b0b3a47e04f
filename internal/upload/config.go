// Package upload receives multipart image files, validates and transcodes them, and stores
// them under the public uploads root.
package upload

import (
	"fmt"
	"slices"
)

// Target formats
const (
	FormatWebP = "webp"
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// Defaults of Config
const (
	DefaultMaxSize   int64 = 5 * 1024 * 1024
	DefaultMaxWidth        = 1200
	DefaultMaxHeight       = 800
	DefaultQuality         = 80
	DefaultFormat          = FormatWebP
)

// DefaultAllowedTypes are the MIME types accepted when Config.AllowedTypes is empty
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Config controls validation and transcoding of one upload
type Config struct {
	// AllowedTypes is the MIME allow-list checked against both the declared and the sniffed type
	AllowedTypes []string
	// MaxSize is the largest accepted file in bytes
	MaxSize int64
	// MaxWidth and MaxHeight bound the stored image; smaller images are never upscaled
	MaxWidth  int
	MaxHeight int
	// Quality is the lossy encoder quality, 1 to 100
	Quality int
	// Format is the target format of non-animated images
	Format string
}

// DefaultConfig returns the package defaults
func DefaultConfig() Config {
	return Config{
		AllowedTypes: slices.Clone(DefaultAllowedTypes),
		MaxSize:      DefaultMaxSize,
		MaxWidth:     DefaultMaxWidth,
		MaxHeight:    DefaultMaxHeight,
		Quality:      DefaultQuality,
		Format:       DefaultFormat,
	}
}

// withDefaults fills every zero field from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.AllowedTypes) == 0 {
		c.AllowedTypes = d.AllowedTypes
	}
	if c.MaxSize <= 0 {
		c.MaxSize = d.MaxSize
	}
	if c.MaxWidth <= 0 {
		c.MaxWidth = d.MaxWidth
	}
	if c.MaxHeight <= 0 {
		c.MaxHeight = d.MaxHeight
	}
	if c.Quality <= 0 {
		c.Quality = d.Quality
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	return c
}

// Validate checks the ranges of an explicit configuration
func (c Config) Validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100, got %d", c.Quality)
	}
	if _, ok := formatMIME[c.Format]; !ok {
		return fmt.Errorf("unsupported target format %q", c.Format)
	}
	return nil
}

// allowed reports whether mimeType is in the allow-list
func (c Config) allowed(mimeType string) bool {
	return slices.Contains(c.AllowedTypes, mimeType)
}

var formatMIME = map[string]string{
	FormatWebP: "image/webp",
	FormatJPEG: "image/jpeg",
	FormatPNG:  "image/png",
}

var mimeExtension = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// maxSizeLabel renders MaxSize for error messages, e.g. "5MB"
func (c Config) maxSizeLabel() string {
	const mb = 1024 * 1024
	if c.MaxSize%mb == 0 {
		return fmt.Sprintf("%dMB", c.MaxSize/mb)
	}
	return fmt.Sprintf("%d bytes", c.MaxSize)
}
