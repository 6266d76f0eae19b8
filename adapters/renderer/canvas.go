// Package renderer implements core.CanvasRenderer on an off-screen NRGBA
// surface.
package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/vincent-petithory/dataurl"

	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

// Canvas paints a decoded image onto a transparent surface of the same size
// at (0,0), without scaling or cropping, and serialises the surface with the
// encoder registered for the target format.
type Canvas struct {
	Registry core.Registry
	Options  core.EncodeOptions
}

// NewCanvas returns a Canvas bound to reg.  quality is passed to lossy
// encoders; 0 leaves each encoder's own default.
func NewCanvas(reg core.Registry, quality int) *Canvas {
	return &Canvas{Registry: reg, Options: core.EncodeOptions{Quality: quality}}
}

func (c *Canvas) Render(ctx context.Context, img *core.DecodedImage, format core.Format) (core.DataURL, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(apperrors.CategoryEncode, "canvas.render", err)
	}
	if img == nil || img.Image == nil {
		return "", apperrors.New(apperrors.CategoryInput, "canvas.render", apperrors.ErrInvalidInput)
	}
	if !format.IsOutput() {
		return "", apperrors.New(apperrors.CategoryEncode, "canvas.render",
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format))
	}
	if img.Width <= 0 || img.Height <= 0 {
		return "", apperrors.New(apperrors.CategoryInput, "canvas.render",
			fmt.Errorf("%w: %dx%d", apperrors.ErrInvalidDimensions, img.Width, img.Height))
	}
	enc, ok := c.Registry.EncoderFor(format)
	if !ok {
		return "", apperrors.New(apperrors.CategoryEncode, "canvas.render",
			fmt.Errorf("%w: no encoder for %s", apperrors.ErrUnsupportedFormat, format))
	}

	surface := Paint(img)
	data, err := enc.Encode(ctx, surface, c.Options)
	if err != nil {
		return "", err
	}
	return core.DataURL(dataurl.New(data, format.MIMEType()).String()), nil
}

// Paint allocates a transparent Width×Height surface and draws img on it at
// the origin with source-over compositing.
func Paint(img *core.DecodedImage) *image.NRGBA {
	surface := imaging.New(img.Width, img.Height, color.Transparent)
	return imaging.Overlay(surface, img.Image, image.Pt(0, 0), 1.0)
}

var _ core.CanvasRenderer = (*Canvas)(nil)
