package converter

import (
	"fmt"
	"strings"
)

type Format int32

const (
	_ Format = iota
	FormatWEBP
	FormatAVIF
	FormatBoth
)

func (f Format) String() string {
	switch f {
	case FormatWEBP:
		return "webp"
	case FormatAVIF:
		return "avif"
	case FormatBoth:
		return "both"
	default:
		return fmt.Sprintf("UNKNOWN FORMAT %d", f)
	}
}

func (f Format) Extension() string {
	switch f {
	case FormatWEBP:
		return ".webp"
	case FormatAVIF:
		return ".avif"
	default:
		return ""
	}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "webp":
		return FormatWEBP, nil
	case "avif":
		return FormatAVIF, nil
	case "both", "":
		return FormatBoth, nil
	default:
		return 0, newErrorf(ErrorKindInvalidConfig, "invalid format: %s", s)
	}
}

const (
	DefaultWebpQuality = 80
	DefaultAvifQuality = 50

	// Security limits for input files, matching the defaults enforced at the
	// caller surfaces.
	DefaultMaxFileSize  = 100 << 20
	DefaultMaxDimension = 10000
)

// Config holds the fully resolved settings for one conversion call. It is
// built once per invocation and read-only afterwards; preset resolution
// happens in the caller layer, the converter never sees preset names.
type Config struct {
	Format      Format `json:"format"`
	WebpQuality int    `json:"webp_quality"`
	AvifQuality int    `json:"avif_quality"`
	Lossless    bool   `json:"lossless"`

	// MaxWidth and MaxHeight bound the output dimensions, preserving aspect
	// ratio. Zero means no constraint on that axis. Images within bounds are
	// never upscaled.
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`

	// OutputDir receives the encoded outputs. Empty means next to the input.
	OutputDir string `json:"output_dir"`

	// MaxFileSize and MaxDimension reject abusive inputs before decode.
	// Zero applies the defaults; negative disables the limit.
	MaxFileSize  int64 `json:"max_file_size"`
	MaxDimension int   `json:"max_dimension"`

	// CleanupOnFailure removes already-written sibling outputs when a later
	// format fails. Off by default: the orphaned output is left on disk and
	// the item is still reported as failed.
	CleanupOnFailure bool `json:"cleanup_on_failure"`
}

// DefaultConfig returns a Config with the documented defaults applied.
func DefaultConfig() Config {
	return Config{
		Format:       FormatBoth,
		WebpQuality:  DefaultWebpQuality,
		AvifQuality:  DefaultAvifQuality,
		MaxFileSize:  DefaultMaxFileSize,
		MaxDimension: DefaultMaxDimension,
	}
}

func (c Config) Validate() error {
	switch c.Format {
	case FormatWEBP, FormatAVIF, FormatBoth:
	default:
		return newErrorf(ErrorKindInvalidConfig, "invalid format: %d", c.Format)
	}

	if c.WebpQuality < 1 || c.WebpQuality > 100 {
		return newErrorf(ErrorKindInvalidConfig, "webp_quality must be 1-100, got %d", c.WebpQuality)
	}

	if c.AvifQuality < 1 || c.AvifQuality > 100 {
		return newErrorf(ErrorKindInvalidConfig, "avif_quality must be 1-100, got %d", c.AvifQuality)
	}

	if c.MaxWidth < 0 {
		return newErrorf(ErrorKindInvalidConfig, "max_width must be positive, got %d", c.MaxWidth)
	}

	if c.MaxHeight < 0 {
		return newErrorf(ErrorKindInvalidConfig, "max_height must be positive, got %d", c.MaxHeight)
	}

	return nil
}

// formats lists the concrete output formats requested by the config, in the
// fixed enumeration order: webp before avif.
func (c Config) formats() []Format {
	switch c.Format {
	case FormatWEBP:
		return []Format{FormatWEBP}
	case FormatAVIF:
		return []Format{FormatAVIF}
	default:
		return []Format{FormatWEBP, FormatAVIF}
	}
}

func (c Config) maxFileSize() int64 {
	if c.MaxFileSize == 0 {
		return DefaultMaxFileSize
	}

	return c.MaxFileSize
}

func (c Config) maxDimension() int {
	if c.MaxDimension == 0 {
		return DefaultMaxDimension
	}

	return c.MaxDimension
}
