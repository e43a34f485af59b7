package converter

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/webp"

	"github.com/pixelrelay/image-convert/internal/testutil"
)

func TestConvertBothFormats(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "photo.png")
	writePNG(t, input, 64, 48)

	result, err := ConvertFile(gCtx, input, DefaultConfig())
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateSuccess, result.State, "result state")
	testutil.Assert(t, 2, len(result.Outputs), "output count")

	testutil.Assert(t, FormatWEBP, result.Outputs[0].Format, "first output format")
	testutil.Assert(t, FormatAVIF, result.Outputs[1].Format, "second output format")

	for _, out := range result.Outputs {
		info, err := os.Stat(out.Path)
		testutil.IsNil(t, err, "output on disk")
		testutil.Assert(t, out.Size, info.Size(), "reported size")
		testutil.Assert(t, 64, out.Width, "output width")
		testutil.Assert(t, 48, out.Height, "output height")

		if out.SHA3 == "" {
			t.Fatal("missing output digest")
		}
	}

	testutil.Assert(t, filepath.Join(dir, "photo.webp"), result.Outputs[0].Path, "webp path")
	testutil.Assert(t, filepath.Join(dir, "photo.avif"), result.Outputs[1].Path, "avif path")
	testutil.Assert(t, "image/png", result.InputType, "sniffed content type")
}

func TestConvertSingleFormat(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "photo.png")
	writePNG(t, input, 16, 16)

	cfg := DefaultConfig()
	cfg.Format = FormatAVIF

	result, err := ConvertFile(gCtx, input, cfg)
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateSuccess, result.State, "result state")
	testutil.Assert(t, 1, len(result.Outputs), "output count")
	testutil.Assert(t, FormatAVIF, result.Outputs[0].Format, "output format")

	if _, ok := result.Output(FormatWEBP); ok {
		t.Fatal("unexpected webp output")
	}
}

func TestConvertNoUpscale(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "small.png")
	writePNG(t, input, 10, 10)

	cfg := DefaultConfig()
	cfg.Format = FormatWEBP
	cfg.MaxWidth = 100
	cfg.MaxHeight = 100

	result, err := ConvertFile(gCtx, input, cfg)
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateSuccess, result.State, "result state")
	testutil.Assert(t, 10, result.Outputs[0].Width, "width unchanged")
	testutil.Assert(t, 10, result.Outputs[0].Height, "height unchanged")
}

func TestConvertDownscaleAspectRatio(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "wide.png")
	writePNG(t, input, 100, 50)

	cfg := DefaultConfig()
	cfg.Format = FormatWEBP
	cfg.MaxWidth = 50

	result, err := ConvertFile(gCtx, input, cfg)
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateSuccess, result.State, "result state")
	testutil.Assert(t, 50, result.Outputs[0].Width, "scaled width")
	testutil.Assert(t, 25, result.Outputs[0].Height, "scaled height")
}

func TestConvertLosslessRoundtrip(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "exact.png")
	src := writePNG(t, input, 24, 24)

	cfg := DefaultConfig()
	cfg.Format = FormatWEBP
	cfg.WebpQuality = 100
	cfg.Lossless = true

	result, err := ConvertFile(gCtx, input, cfg)
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateSuccess, result.State, "result state")

	f, err := os.Open(result.Outputs[0].Path)
	testutil.IsNil(t, err, "open output")
	defer f.Close()

	decoded, err := webp.Decode(f)
	testutil.IsNil(t, err, "decode output")

	bounds := src.Bounds()
	testutil.Assert(t, bounds, decoded.Bounds(), "bounds")

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sr, sg, sb, sa := src.At(x, y).RGBA()
			dr, dg, db, da := decoded.At(x, y).RGBA()

			if sr != dr || sg != dg || sb != db || sa != da {
				t.Fatalf("pixel mismatch at %d,%d", x, y)
			}
		}
	}
}

func TestConvertCorruptImage(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "bad.png")
	err := os.WriteFile(input, []byte("definitely not a png"), 0644)
	testutil.IsNil(t, err, "write fixture")

	result, err := ConvertFile(gCtx, input, DefaultConfig())
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateFailed, result.State, "result state")
	testutil.Assert(t, ErrorKindCorruptImage, result.ErrorKind, "error kind")
	testutil.Assert(t, 0, len(result.Outputs), "no outputs")
}

func TestConvertMismatchedContainer(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	// GIF bytes behind a supported extension: the sniff recognizes the
	// container and rejects it before the decoder runs.
	input := filepath.Join(dir, "fake.png")
	err := os.WriteFile(input, []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"), 0644)
	testutil.IsNil(t, err, "write fixture")

	result, err := ConvertFile(gCtx, input, DefaultConfig())
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateFailed, result.State, "result state")
	testutil.Assert(t, ErrorKindUnsupportedFormat, result.ErrorKind, "error kind")
	testutil.Assert(t, "image/gif", result.InputType, "sniffed content type")
}

func TestConvertUnsupportedFormat(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "anim.gif")
	err := os.WriteFile(input, []byte("GIF89a"), 0644)
	testutil.IsNil(t, err, "write fixture")

	result := Converter{}.Convert(gCtx, PathOf(input), DefaultConfig())
	testutil.Assert(t, ResultStateFailed, result.State, "result state")
	testutil.Assert(t, ErrorKindUnsupportedFormat, result.ErrorKind, "error kind")
}

func TestConvertMissingInput(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)

	result, err := ConvertFile(gCtx, filepath.Join(t.TempDir(), "nope.png"), DefaultConfig())
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateFailed, result.State, "result state")
	testutil.Assert(t, ErrorKindIOError, result.ErrorKind, "error kind")
}

func TestConvertFileSizeLimit(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "photo.png")
	writePNG(t, input, 32, 32)

	cfg := DefaultConfig()
	cfg.MaxFileSize = 10

	result, err := ConvertFile(gCtx, input, cfg)
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateFailed, result.State, "result state")
	testutil.Assert(t, ErrorKindLimitExceeded, result.ErrorKind, "error kind")
}

func TestConvertDimensionLimit(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "photo.png")
	writePNG(t, input, 32, 32)

	cfg := DefaultConfig()
	cfg.MaxDimension = 16

	result, err := ConvertFile(gCtx, input, cfg)
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateFailed, result.State, "result state")
	testutil.Assert(t, ErrorKindLimitExceeded, result.ErrorKind, "error kind")
}

func TestConvertOutputDir(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out", "nested")

	input := filepath.Join(dir, "photo.png")
	writePNG(t, input, 8, 8)

	cfg := DefaultConfig()
	cfg.Format = FormatWEBP
	cfg.OutputDir = outDir

	result, err := ConvertFile(gCtx, input, cfg)
	testutil.IsNil(t, err, "convert file")
	testutil.Assert(t, ResultStateSuccess, result.State, "result state")
	testutil.Assert(t, filepath.Join(outDir, "photo.webp"), result.Outputs[0].Path, "output path")

	_, err = os.Stat(result.Outputs[0].Path)
	testutil.IsNil(t, err, "output on disk")
}

func TestConvertInvalidConfig(t *testing.T) {
	t.Parallel()

	gCtx := testCtx(t)

	cfg := DefaultConfig()
	cfg.WebpQuality = 0

	_, err := ConvertFile(gCtx, "whatever.png", cfg)
	testutil.IsNotNil(t, err, "validation error")
	testutil.Assert(t, ErrorKindInvalidConfig, KindOf(err), "error kind")
}

func TestFitWithin(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                string
		width, height       int
		maxWidth, maxHeight int
		expWidth, expHeight int
	}{
		{"no bounds", 800, 600, 0, 0, 800, 600},
		{"width bound", 800, 600, 400, 0, 400, 300},
		{"height bound", 800, 600, 0, 300, 400, 300},
		{"tighter of both", 800, 600, 400, 150, 200, 150},
		{"within bounds", 800, 600, 1920, 1080, 800, 600},
		{"exact fit", 800, 600, 800, 600, 800, 600},
		{"rounding", 1000, 333, 500, 0, 500, 167},
		{"never zero", 1000, 1, 10, 0, 10, 1},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			w, h := fitWithin(c.width, c.height, c.maxWidth, c.maxHeight)
			if w != c.expWidth || h != c.expHeight {
				t.Fatalf("expected %dx%d, got %dx%d", c.expWidth, c.expHeight, w, h)
			}
		})
	}
}
