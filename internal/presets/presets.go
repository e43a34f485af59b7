package presets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pixelrelay/image-convert/internal/converter"
)

// Preset is a named bundle of conversion settings for a common scenario.
// Presets are static configuration data: resolution happens in the caller
// layer and the converter only ever sees a fully resolved Config.
type Preset struct {
	Format      converter.Format
	WebpQuality int
	AvifQuality int
	Lossless    bool
	MaxWidth    int
	MaxHeight   int
	Description string
}

var presets = map[string]Preset{
	"web": {
		Format:      converter.FormatWEBP,
		WebpQuality: 80,
		AvifQuality: 50,
		MaxWidth:    1920,
		Description: "Optimized for web pages (WebP, quality 80, max 1920px wide)",
	},
	"thumbnail": {
		Format:      converter.FormatWEBP,
		WebpQuality: 70,
		AvifQuality: 50,
		MaxWidth:    300,
		MaxHeight:   300,
		Description: "Small thumbnails (WebP, quality 70, max 300x300)",
	},
	"social": {
		Format:      converter.FormatWEBP,
		WebpQuality: 85,
		AvifQuality: 50,
		MaxWidth:    1200,
		MaxHeight:   630,
		Description: "Social media images (WebP, quality 85, 1200x630)",
	},
	"hd": {
		Format:      converter.FormatWEBP,
		WebpQuality: 90,
		AvifQuality: 80,
		MaxWidth:    1920,
		MaxHeight:   1080,
		Description: "HD resolution (WebP, quality 90, 1920x1080)",
	},
	"4k": {
		Format:      converter.FormatWEBP,
		WebpQuality: 90,
		AvifQuality: 80,
		MaxWidth:    3840,
		MaxHeight:   2160,
		Description: "4K resolution (WebP, quality 90, 3840x2160)",
	},
	"archive": {
		Format:      converter.FormatBoth,
		WebpQuality: 95,
		AvifQuality: 90,
		Description: "High quality archival (both formats, quality 95/90)",
	},
	"lossless": {
		Format:      converter.FormatWEBP,
		WebpQuality: 100,
		AvifQuality: 100,
		Lossless:    true,
		Description: "Lossless WebP compression (no quality loss)",
	},
	"max-compression": {
		Format:      converter.FormatAVIF,
		WebpQuality: 50,
		AvifQuality: 40,
		Description: "Maximum file size reduction (AVIF, quality 40)",
	},
}

// Get returns the preset with the given name.
func Get(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q, available presets: %s", name, strings.Join(Names(), ", "))
	}

	return p, nil
}

// Names lists all preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// List maps preset names to their descriptions.
func List() map[string]string {
	out := make(map[string]string, len(presets))
	for name, p := range presets {
		out[name] = p.Description
	}

	return out
}

// Apply overlays the preset's settings onto cfg and returns the result.
func (p Preset) Apply(cfg converter.Config) converter.Config {
	cfg.Format = p.Format
	cfg.WebpQuality = p.WebpQuality
	cfg.AvifQuality = p.AvifQuality
	cfg.Lossless = p.Lossless
	cfg.MaxWidth = p.MaxWidth
	cfg.MaxHeight = p.MaxHeight

	return cfg
}
