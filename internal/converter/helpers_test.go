package converter

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/pixelrelay/image-convert/internal/configure"
	"github.com/pixelrelay/image-convert/internal/global"
	"github.com/pixelrelay/image-convert/internal/svc/prometheus"
)

func testCtx(t *testing.T) global.Context {
	t.Helper()

	gCtx := global.New(context.Background(), &configure.Config{})
	gCtx.Inst().Prometheus = prometheus.New(prometheus.Options{})

	return gCtx
}

func testImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 7 % 256),
				G: uint8(y * 13 % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	return img
}

func writePNG(t *testing.T, path string, width, height int) *image.NRGBA {
	t.Helper()

	img := testImage(width, height)

	buf := bytes.Buffer{}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}

	return img
}
