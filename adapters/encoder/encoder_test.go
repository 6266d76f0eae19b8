package encoder_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"golang.org/x/image/webp"

	"github.com/Skryldev/image-converter/adapters/encoder"
	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

func gradient(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func TestEncoders_RoundTrip(t *testing.T) {
	reg := core.NewRegistry()
	encoder.RegisterDefaults(reg, 90)

	decoders := map[core.Format]func([]byte) (image.Image, error){
		core.FormatJPEG: func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) },
		core.FormatPNG:  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
		core.FormatGIF:  func(b []byte) (image.Image, error) { return gif.Decode(bytes.NewReader(b)) },
		core.FormatWebP: func(b []byte) (image.Image, error) { return webp.Decode(bytes.NewReader(b)) },
	}

	src := gradient(64, 48)
	for _, f := range core.OutputFormats {
		enc, ok := reg.EncoderFor(f)
		if !ok {
			t.Fatalf("%s: no encoder registered", f)
		}
		if !enc.CanEncode(f) {
			t.Errorf("%s: CanEncode = false", f)
		}
		data, err := enc.Encode(context.Background(), src, core.EncodeOptions{})
		if err != nil {
			t.Errorf("%s: Encode: %v", f, err)
			continue
		}
		out, err := decoders[f](data)
		if err != nil {
			t.Errorf("%s: decode output: %v", f, err)
			continue
		}
		if b := out.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
			t.Errorf("%s: bounds %v, want 64x48", f, b)
		}
	}
}

func TestJPEG_QualityAffectsSize(t *testing.T) {
	enc := encoder.NewJPEG(0)
	src := gradient(128, 128)
	low, err := enc.Encode(context.Background(), src, core.EncodeOptions{Quality: 10})
	if err != nil {
		t.Fatal(err)
	}
	high, err := enc.Encode(context.Background(), src, core.EncodeOptions{Quality: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(low) >= len(high) {
		t.Errorf("quality 10 produced %dB, quality 100 %dB", len(low), len(high))
	}
}

func TestEncoders_NilImage(t *testing.T) {
	encs := []core.Encoder{encoder.NewJPEG(0), encoder.NewPNG(), encoder.NewGIF(), encoder.NewWebP(0)}
	for _, enc := range encs {
		if _, err := enc.Encode(context.Background(), nil, core.EncodeOptions{}); !errors.Is(err, apperrors.ErrEmptyInput) {
			t.Errorf("%T: got %v, want ErrEmptyInput", enc, err)
		}
	}
}
