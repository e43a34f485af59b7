package container

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/pixelrelay/image-convert/internal/testutil"
)

type testCase struct {
	Name         string
	Data         []byte
	ExpectedType types.Type
}

func encodeCase(t *testing.T, name string, expected types.Type, encode func(b *bytes.Buffer, img image.Image) error) testCase {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	b := bytes.Buffer{}
	if err := encode(&b, img); err != nil {
		t.Fatalf("failed to encode %s fixture: %v", name, err)
	}

	return testCase{
		Name:         name,
		Data:         b.Bytes(),
		ExpectedType: expected,
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	cases := []testCase{
		encodeCase(t, "static.png", matchers.TypePng, func(b *bytes.Buffer, img image.Image) error {
			return png.Encode(b, img)
		}),
		encodeCase(t, "static.jpeg", matchers.TypeJpeg, func(b *bytes.Buffer, img image.Image) error {
			return jpeg.Encode(b, img, nil)
		}),
		encodeCase(t, "static.tiff", matchers.TypeTiff, func(b *bytes.Buffer, img image.Image) error {
			return tiff.Encode(b, img, nil)
		}),
		encodeCase(t, "static.bmp", matchers.TypeBmp, func(b *bytes.Buffer, img image.Image) error {
			return bmp.Encode(b, img)
		}),
		{
			Name:         "static.webp",
			Data:         []byte("RIFF\x24\x00\x00\x00WEBPVP8 \x00\x00\x00\x00\x00\x00\x00\x00"),
			ExpectedType: matchers.TypeWebp,
		},
		{
			Name:         "static.avif",
			Data:         []byte("\x00\x00\x00\x20ftypavif\x00\x00\x00\x00"),
			ExpectedType: TypeAvif,
		},
		{
			Name:         "garbage.bin",
			Data:         []byte("not an image at all"),
			ExpectedType: types.Unknown,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			t.Parallel()

			testutil.Assert(t, c.ExpectedType, Match(c.Data), "sniffed type")
		})
	}
}

func TestIsDecodable(t *testing.T) {
	t.Parallel()

	testutil.Assert(t, true, IsDecodable(matchers.TypePng), "png decodable")
	testutil.Assert(t, true, IsDecodable(matchers.TypeWebp), "webp decodable")
	testutil.Assert(t, false, IsDecodable(TypeAvif), "avif not decodable")
	testutil.Assert(t, false, IsDecodable(types.Unknown), "unknown not decodable")
}
