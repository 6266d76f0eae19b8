// Package download implements core.DownloadTrigger for disk and HTTP hosts.
package download

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/vincent-petithory/dataurl"

	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

// decode parses url into its media type and payload.
func decode(op string, url core.DataURL) (string, []byte, error) {
	if url == "" {
		return "", nil, apperrors.New(apperrors.CategoryInput, op, apperrors.ErrEmptyInput)
	}
	du, err := dataurl.DecodeString(string(url))
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.CategoryInput, op, err)
	}
	return du.MediaType.ContentType(), du.Data, nil
}

// Disk saves downloads through a StorageAdapter, one file per filename.
type Disk struct {
	Storage core.StorageAdapter
	Bucket  string // optional subdirectory
	Logger  core.Logger
}

// NewDisk returns a Disk trigger writing to s.
func NewDisk(s core.StorageAdapter, l core.Logger) *Disk {
	return &Disk{Storage: s, Logger: l}
}

func (d *Disk) Trigger(ctx context.Context, url core.DataURL, filename string) error {
	ct, data, err := decode("disk.trigger", url)
	if err != nil {
		return err
	}
	if d.Logger != nil {
		d.Logger.Debug("download.start", "filename", filename, "content_type", ct, "bytes", len(data))
	}
	return d.Storage.Put(ctx, core.StorageKey{Bucket: d.Bucket, Path: filename}, bytes.NewReader(data))
}

// HTTP streams a download to a browser as an attachment.  A value serves a
// single response.
type HTTP struct {
	W      http.ResponseWriter
	Logger core.Logger
}

// NewHTTP returns an HTTP trigger writing to w.
func NewHTTP(w http.ResponseWriter, l core.Logger) *HTTP {
	return &HTTP{W: w, Logger: l}
}

func (h *HTTP) Trigger(ctx context.Context, url core.DataURL, filename string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryPipeline, "http.trigger", err)
	}
	ct, data, err := decode("http.trigger", url)
	if err != nil {
		return err
	}
	if h.Logger != nil {
		h.Logger.Debug("download.start", "filename", filename, "content_type", ct, "bytes", len(data))
	}

	hdr := h.W.Header()
	hdr.Set("Content-Type", ct)
	hdr.Set("Content-Length", strconv.Itoa(len(data)))
	hdr.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	h.W.WriteHeader(http.StatusOK)
	if _, err := h.W.Write(data); err != nil {
		return apperrors.Wrap(apperrors.CategoryStorage, "http.trigger.write", err)
	}
	return nil
}

var (
	_ core.DownloadTrigger = (*Disk)(nil)
	_ core.DownloadTrigger = (*HTTP)(nil)
)
