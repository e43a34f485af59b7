package converter

import (
	"testing"

	"github.com/pixelrelay/image-convert/internal/testutil"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected Format
		fails    bool
	}{
		{"webp", FormatWEBP, false},
		{"avif", FormatAVIF, false},
		{"both", FormatBoth, false},
		{"", FormatBoth, false},
		{"WEBP", FormatWEBP, false},
		{"jpeg", 0, true},
		{"gif", 0, true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.input, func(t *testing.T) {
			t.Parallel()

			f, err := ParseFormat(c.input)
			if c.fails {
				testutil.IsNotNil(t, err, "error")
				testutil.Assert(t, ErrorKindInvalidConfig, KindOf(err), "error kind")
				return
			}

			testutil.IsNil(t, err, "no error")
			testutil.Assert(t, c.expected, f, "format")
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := DefaultConfig()

	cases := []struct {
		name   string
		mutate func(*Config)
		fails  bool
	}{
		{"defaults", func(*Config) {}, false},
		{"quality bounds", func(c *Config) { c.WebpQuality = 100; c.AvifQuality = 1 }, false},
		{"webp quality zero", func(c *Config) { c.WebpQuality = 0 }, true},
		{"webp quality over", func(c *Config) { c.WebpQuality = 101 }, true},
		{"avif quality zero", func(c *Config) { c.AvifQuality = 0 }, true},
		{"avif quality over", func(c *Config) { c.AvifQuality = 150 }, true},
		{"negative max width", func(c *Config) { c.MaxWidth = -1 }, true},
		{"negative max height", func(c *Config) { c.MaxHeight = -1 }, true},
		{"unset format", func(c *Config) { c.Format = 0 }, true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			c.mutate(&cfg)

			err := cfg.Validate()
			if c.fails {
				testutil.IsNotNil(t, err, "error")
				testutil.Assert(t, ErrorKindInvalidConfig, KindOf(err), "error kind")
				return
			}

			testutil.IsNil(t, err, "no error")
		})
	}
}

func TestConfigFormats(t *testing.T) {
	t.Parallel()

	testutil.Assert(t, []Format{FormatWEBP}, Config{Format: FormatWEBP}.formats(), "webp only")
	testutil.Assert(t, []Format{FormatAVIF}, Config{Format: FormatAVIF}.formats(), "avif only")
	testutil.Assert(t, []Format{FormatWEBP, FormatAVIF}, Config{Format: FormatBoth}.formats(), "both, webp first")
}

func TestConfigLimits(t *testing.T) {
	t.Parallel()

	testutil.Assert(t, int64(DefaultMaxFileSize), Config{}.maxFileSize(), "default file size")
	testutil.Assert(t, int64(42), Config{MaxFileSize: 42}.maxFileSize(), "explicit file size")
	testutil.Assert(t, DefaultMaxDimension, Config{}.maxDimension(), "default dimension")
	testutil.Assert(t, 256, Config{MaxDimension: 256}.maxDimension(), "explicit dimension")
}
