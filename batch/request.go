package batch

import (
	"github.com/pixelrelay/image-convert/internal/converter"
	"github.com/pixelrelay/image-convert/internal/presets"
)

// Request is the wire shape of a conversion call shared by the CLI, the MCP
// tools and the REST API.
type Request struct {
	InputPath   string `json:"input_path"`
	OutputDir   string `json:"output_dir,omitempty"`
	Format      string `json:"format,omitempty"`
	WebpQuality int    `json:"webp_quality,omitempty"`
	AvifQuality int    `json:"avif_quality,omitempty"`
	Lossless    bool   `json:"lossless,omitempty"`
	MaxWidth    int    `json:"max_width,omitempty"`
	MaxHeight   int    `json:"max_height,omitempty"`
	Workers     int    `json:"workers,omitempty"`
	Preset      string `json:"preset,omitempty"`
	Stats       bool   `json:"stats,omitempty"`
}

// Resolve turns the request into a converter config: defaults, then preset,
// then explicit fields. The returned config is validated.
func (r Request) Resolve() (converter.Config, error) {
	cfg := converter.DefaultConfig()

	if r.Preset != "" {
		p, err := presets.Get(r.Preset)
		if err != nil {
			return converter.Config{}, err
		}

		cfg = p.Apply(cfg)
	} else {
		format, err := converter.ParseFormat(r.Format)
		if err != nil {
			return converter.Config{}, err
		}

		cfg.Format = format

		if r.WebpQuality != 0 {
			cfg.WebpQuality = r.WebpQuality
		}

		if r.AvifQuality != 0 {
			cfg.AvifQuality = r.AvifQuality
		}

		cfg.Lossless = r.Lossless
		cfg.MaxWidth = r.MaxWidth
		cfg.MaxHeight = r.MaxHeight
	}

	cfg.OutputDir = r.OutputDir

	if err := cfg.Validate(); err != nil {
		return converter.Config{}, err
	}

	return cfg, nil
}
