package encoder

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"

	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

// GIF encodes a single-frame GIF, quantised to at most NumColors colours.
type GIF struct {
	NumColors int
}

func NewGIF() *GIF { return &GIF{NumColors: 256} }

func (g *GIF) CanEncode(format core.Format) bool { return format == core.FormatGIF }

func (g *GIF) Encode(ctx context.Context, src image.Image, _ core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "gif.encode", err)
	}
	if src == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "gif.encode", apperrors.ErrEmptyInput)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.GIF, imaging.GIFNumColors(g.NumColors)); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "gif.encode", err)
	}
	return buf.Bytes(), nil
}
