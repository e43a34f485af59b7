package converter

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"github.com/pixelrelay/image-convert/container"
	"github.com/pixelrelay/image-convert/internal/global"
)

// Converter performs one image's decode, resize, encode and write sequence.
type Converter struct{}

// Convert converts a single image to the formats requested by cfg. It never
// returns an error: every failure is captured in the result so a batch can
// report per-item outcomes without one failure affecting its siblings.
func (c Converter) Convert(gCtx global.Context, input ImagePath, cfg Config) (result ConversionResult) {
	result = ConversionResult{
		Input:     input.Path,
		State:     ResultStateFailed,
		StartedAt: time.Now(),
	}

	zap.S().Debugw("starting conversion",
		"input", input.Path,
	)

	finish := gCtx.Inst().Prometheus.StartConversion()

	defer func() {
		if pnk := recover(); pnk != nil {
			c.fail(&result, fmt.Errorf("panic at runtime: %v", pnk))
		}

		result.FinishedAt = time.Now()

		finish(result.State == ResultStateSuccess)
	}()

	img, rawSize, inputType, err := c.load(gCtx, input, cfg)
	result.InputSize = rawSize
	result.InputType = inputType

	if err != nil {
		c.fail(&result, err)
		return result
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), cfg.MaxWidth, cfg.MaxHeight)

	if width != bounds.Dx() || height != bounds.Dy() {
		done := gCtx.Inst().Prometheus.ResizeImage()
		img = imaging.Resize(img, width, height, imaging.Lanczos)
		done()

		zap.S().Infow("resized image",
			"input", input.Path,
			"from", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
			"to", fmt.Sprintf("%dx%d", width, height),
		)
	}

	gCtx.Inst().Prometheus.TotalPixelsProcessed(width * height)

	outputs, err := c.encodeAll(gCtx, img, input, cfg)
	if err != nil {
		c.fail(&result, err)
		return result
	}

	result.Outputs = outputs
	result.State = ResultStateSuccess

	return result
}

func (Converter) fail(result *ConversionResult, err error) {
	result.State = ResultStateFailed
	result.ErrorKind = KindOf(err)
	result.Message = err.Error()
	result.Outputs = nil

	zap.S().Warnw("conversion failed",
		"input", result.Input,
		"kind", result.ErrorKind.String(),
		"error", err,
	)
}

// load reads and decodes the input into an alpha-capable bitmap so that
// resize and encode behave uniformly regardless of the source format. The
// returned content type is the sniffed one, not the extension's.
func (Converter) load(gCtx global.Context, input ImagePath, cfg Config) (*image.NRGBA, int64, string, error) {
	if !SupportedExts[input.Ext] {
		return nil, 0, "", newErrorf(ErrorKindUnsupportedFormat, "unsupported image format: %s", input.Ext)
	}

	raw, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, 0, "", newError(ErrorKindIOError, multierr.Append(fmt.Errorf("failed at read input"), err))
	}

	size := int64(len(raw))

	gCtx.Inst().Prometheus.TotalBytesRead(len(raw))

	if limit := cfg.maxFileSize(); limit > 0 && size > limit {
		return nil, size, "", newErrorf(ErrorKindLimitExceeded, "file too large: %d bytes (max %d)", len(raw), limit)
	}

	match := container.Match(raw)
	mime := match.MIME.Value

	zap.S().Debugw("sniffed input",
		"input", input.Path,
		"content_type", mime,
	)

	// A recognized container the decoders cannot handle is rejected up
	// front. Unrecognized bytes fall through to the decoder, which
	// classifies them as corrupt.
	if mime != "" && !container.IsDecodable(match) {
		return nil, size, mime, newErrorf(ErrorKindUnsupportedFormat, "unsupported content type: %s", mime)
	}

	done := gCtx.Inst().Prometheus.DecodeImage()
	src, _, err := image.Decode(bytes.NewReader(raw))
	done()

	if err != nil {
		return nil, size, mime, newError(ErrorKindCorruptImage, multierr.Append(fmt.Errorf("failed at decode %s", input.Path), err))
	}

	bounds := src.Bounds()
	if limit := cfg.maxDimension(); limit > 0 && (bounds.Dx() > limit || bounds.Dy() > limit) {
		return nil, size, mime, newErrorf(ErrorKindLimitExceeded, "image dimensions too large: %dx%d (max %d)", bounds.Dx(), bounds.Dy(), limit)
	}

	return imaging.Clone(src), size, mime, nil
}

func (c Converter) encodeAll(gCtx global.Context, img *image.NRGBA, input ImagePath, cfg Config) ([]OutputFile, error) {
	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(input.Path)
	}

	// Idempotent, safe to race across workers.
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, newError(ErrorKindIOError, multierr.Append(fmt.Errorf("failed at create output dir"), err))
	}

	base := strings.TrimSuffix(filepath.Base(input.Path), filepath.Ext(input.Path))

	outputs := []OutputFile{}

	for _, format := range cfg.formats() {
		out, err := c.encodeOne(gCtx, img, filepath.Join(outDir, base+format.Extension()), format, cfg)
		if err != nil {
			// A sibling format may already be on disk. The default is to
			// leave it there and report the whole item as failed.
			if cfg.CleanupOnFailure {
				for _, prev := range outputs {
					if rmErr := os.Remove(prev.Path); rmErr != nil {
						zap.S().Warnw("failed to remove orphaned output",
							"path", prev.Path,
							"error", rmErr,
						)
					}
				}
			}

			return nil, err
		}

		outputs = append(outputs, out)
	}

	return outputs, nil
}

func (Converter) encodeOne(gCtx global.Context, img *image.NRGBA, outPath string, format Format, cfg Config) (OutputFile, error) {
	buf := bytes.Buffer{}

	done := gCtx.Inst().Prometheus.EncodeImage()

	var (
		err         error
		contentType string
	)

	switch format {
	case FormatWEBP:
		contentType = container.MimeWEBP
		err = webp.Encode(&buf, img, webp.Options{
			Quality:  cfg.WebpQuality,
			Lossless: cfg.Lossless,
			Method:   6,
			Exact:    cfg.Lossless,
		})
	case FormatAVIF:
		contentType = container.MimeAVIF
		err = avif.Encode(&buf, img, avif.Options{
			Quality:      cfg.AvifQuality,
			QualityAlpha: cfg.AvifQuality,
			Speed:        4,
		})
	default:
		err = fmt.Errorf("unknown output format: %d", format)
	}

	done()

	if err != nil {
		return OutputFile{}, newError(ErrorKindEncodeError, multierr.Append(fmt.Errorf("failed at encode %s", format), err))
	}

	done = gCtx.Inst().Prometheus.WriteOutputs()
	err = os.WriteFile(outPath, buf.Bytes(), 0644)
	done()

	if err != nil {
		return OutputFile{}, newError(ErrorKindIOError, multierr.Append(fmt.Errorf("failed at write %s", outPath), err))
	}

	gCtx.Inst().Prometheus.TotalBytesWritten(buf.Len())

	h := sha3.New512()
	_, _ = h.Write(buf.Bytes())

	bounds := img.Bounds()

	zap.S().Debugw("wrote output",
		"path", outPath,
		"size", buf.Len(),
	)

	return OutputFile{
		Format:      format,
		Path:        outPath,
		Size:        int64(buf.Len()),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ContentType: contentType,
		SHA3:        hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// fitWithin computes the output dimensions for the given bounds. The scale
// factor is the minimum of maxWidth/width and maxHeight/height over the
// bounds that are set; a factor of 1 or more leaves the image untouched, so
// images are never upscaled.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	factor := math.Inf(1)

	if maxWidth > 0 {
		factor = math.Min(factor, float64(maxWidth)/float64(width))
	}

	if maxHeight > 0 {
		factor = math.Min(factor, float64(maxHeight)/float64(height))
	}

	if math.IsInf(factor, 1) || factor >= 1 {
		return width, height
	}

	w := int(math.Round(float64(width) * factor))
	h := int(math.Round(float64(height) * factor))

	if w < 1 {
		w = 1
	}

	if h < 1 {
		h = 1
	}

	return w, h
}
