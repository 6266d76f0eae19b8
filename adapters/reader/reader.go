// Package reader implements core.FileReader: it drains a selected file and
// returns its contents as a base64 data URL.
package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"

	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
	"github.com/Skryldev/image-converter/utils"
)

// Reader reads SourceFiles into DataURLs.
type Reader struct {
	MaxBytes  int64 // 0 = no limit
	ChunkSize int
}

// New returns a Reader with the given size limit and chunk size.
func New(maxBytes int64, chunkSize int) *Reader {
	return &Reader{MaxBytes: maxBytes, ChunkSize: chunkSize}
}

func (r *Reader) Read(ctx context.Context, file core.SourceFile) (core.DataURL, error) {
	if file.Body == nil {
		return "", apperrors.New(apperrors.CategoryInput, "reader.read", apperrors.ErrMissingInput)
	}
	if err := ctx.Err(); err != nil {
		return "", apperrors.Wrap(apperrors.CategoryInput, "reader.read", err)
	}

	buf, err := utils.DrainReader(ctx, &utils.LimitedReader{R: file.Body, Max: r.MaxBytes}, r.ChunkSize)
	if err != nil {
		if errors.Is(err, utils.ErrLimitExceeded) {
			return "", apperrors.New(apperrors.CategoryInput, "reader.read",
				fmt.Errorf("%w: %s is larger than %d bytes", apperrors.ErrImageTooLarge, file.Name, r.MaxBytes))
		}
		return "", apperrors.Wrap(apperrors.CategoryInput, "reader.read", err)
	}
	data := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	return core.DataURL(dataurl.New(data, mediaType(data, file.ContentType)).String()), nil
}

// mediaType sniffs data; the caller's hint is used only when the bytes do not
// look like an image.
func mediaType(data []byte, hint string) string {
	sniffed := utils.DetectMIME(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if f := core.ParseFormat(hint); f != core.FormatUnknown {
		return f.MIMEType()
	}
	if sniffed == "" {
		return "application/octet-stream"
	}
	return sniffed
}

var _ core.FileReader = (*Reader)(nil)
