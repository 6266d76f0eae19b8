package renderer_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/vincent-petithory/dataurl"
	"golang.org/x/image/webp"

	"github.com/Skryldev/image-converter/adapters/encoder"
	"github.com/Skryldev/image-converter/adapters/renderer"
	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

func decoded(w, h int) *core.DecodedImage {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 220, G: 20, B: 60, A: 255})
		}
	}
	return &core.DecodedImage{Image: img, Width: w, Height: h, Format: core.FormatPNG}
}

func newCanvas() *renderer.Canvas {
	reg := core.NewRegistry()
	encoder.RegisterDefaults(reg, 92)
	return renderer.NewCanvas(reg, 92)
}

func TestRender_AllOutputFormats(t *testing.T) {
	decode := map[core.Format]func([]byte) (image.Image, error){
		core.FormatJPEG: func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) },
		core.FormatPNG:  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
		core.FormatGIF:  func(b []byte) (image.Image, error) { return gif.Decode(bytes.NewReader(b)) },
		core.FormatWebP: func(b []byte) (image.Image, error) { return webp.Decode(bytes.NewReader(b)) },
	}
	c := newCanvas()
	for _, f := range core.OutputFormats {
		url, err := c.Render(context.Background(), decoded(40, 30), f)
		if err != nil {
			t.Errorf("%s: Render: %v", f, err)
			continue
		}
		if !strings.HasPrefix(string(url), "data:image/"+string(f)+";base64,") {
			t.Errorf("%s: data URL prefix %.32s", f, url)
		}
		du, err := dataurl.DecodeString(string(url))
		if err != nil {
			t.Errorf("%s: parse: %v", f, err)
			continue
		}
		out, err := decode[f](du.Data)
		if err != nil {
			t.Errorf("%s: decode output: %v", f, err)
			continue
		}
		if b := out.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
			t.Errorf("%s: output %v, want 40x30", f, b)
		}
	}
}

func TestPaint_OriginNoScaling(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 14, 13)) // non-zero origin
	src.Set(10, 10, color.NRGBA{G: 255, A: 255})
	surface := renderer.Paint(&core.DecodedImage{Image: src, Width: 4, Height: 3})

	if b := surface.Bounds(); b != image.Rect(0, 0, 4, 3) {
		t.Fatalf("surface bounds %v, want (0,0)-(4,3)", b)
	}
	if got := surface.NRGBAAt(0, 0); got.G != 255 || got.A != 255 {
		t.Errorf("top-left pixel %v, want opaque green", got)
	}
	if got := surface.NRGBAAt(3, 2); got.A != 0 {
		t.Errorf("untouched pixel %v, want transparent", got)
	}
}

func TestRender_Guards(t *testing.T) {
	c := newCanvas()
	ctx := context.Background()

	if _, err := c.Render(ctx, nil, core.FormatPNG); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("nil image: got %v", err)
	}
	if _, err := c.Render(ctx, &core.DecodedImage{Width: 1, Height: 1}, core.FormatPNG); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("nil pixels: got %v", err)
	}
	if _, err := c.Render(ctx, decoded(2, 2), core.FormatBMP); !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("bmp output: got %v", err)
	}
	if _, err := c.Render(ctx, decoded(2, 2), ""); !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("empty format: got %v", err)
	}

	empty := renderer.NewCanvas(core.NewRegistry(), 0)
	if _, err := empty.Render(ctx, decoded(2, 2), core.FormatPNG); !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("no encoder: got %v", err)
	}
}
