package decoder

import (
	"context"
	"fmt"

	"github.com/vincent-petithory/dataurl"

	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
	"github.com/Skryldev/image-converter/utils"
)

// DataURL implements core.ImageDecoder.  It parses the URL and hands the
// payload to the decoder registered for its format.  The sniffed format wins
// over the declared media type, the same way browsers load <img> sources.
type DataURL struct {
	Registry core.Registry
}

// NewDataURL returns a DataURL decoder backed by reg.
func NewDataURL(reg core.Registry) *DataURL { return &DataURL{Registry: reg} }

func (d *DataURL) Decode(ctx context.Context, url core.DataURL) (*core.DecodedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "dataurl.decode", err)
	}
	if url == "" {
		return nil, apperrors.New(apperrors.CategoryInput, "dataurl.decode", apperrors.ErrEmptyInput)
	}

	du, err := dataurl.DecodeString(string(url))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "dataurl.parse", err)
	}
	if len(du.Data) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "dataurl.decode", apperrors.ErrEmptyInput)
	}

	format := core.Format(utils.DetectFormat(du.Data))
	if format == core.FormatUnknown {
		format = core.ParseFormat(du.MediaType.ContentType())
	}
	dec, ok := d.Registry.DecoderFor(format)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryDecode, "dataurl.decode",
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, format))
	}

	img, err := dec.Decode(ctx, utils.BytesReader(du.Data))
	if err != nil {
		return nil, err
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "dataurl.decode",
			fmt.Errorf("%w: %dx%d", apperrors.ErrInvalidDimensions, img.Width, img.Height))
	}
	return img, nil
}

// RegisterDefaults registers the standard-library and x/image decoders for
// every supported input format.
func RegisterDefaults(reg core.Registry) {
	reg.RegisterDecoder(core.FormatJPEG, NewJPEG())
	reg.RegisterDecoder(core.FormatPNG, NewPNG())
	reg.RegisterDecoder(core.FormatGIF, NewGIF())
	reg.RegisterDecoder(core.FormatWebP, NewWebP())
	reg.RegisterDecoder(core.FormatBMP, NewBMP())
	reg.RegisterDecoder(core.FormatTIFF, NewTIFF())
}

var (
	_ core.ImageDecoder = (*DataURL)(nil)
	_ core.Decoder      = (*JPEG)(nil)
	_ core.Decoder      = (*PNG)(nil)
	_ core.Decoder      = (*GIF)(nil)
	_ core.Decoder      = (*WebP)(nil)
	_ core.Decoder      = (*BMP)(nil)
	_ core.Decoder      = (*TIFF)(nil)
)
