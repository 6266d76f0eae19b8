package utils

import (
	"bytes"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	formatJPEG    = "jpeg"
	formatPNG     = "png"
	formatGIF     = "gif"
	formatWebP    = "webp"
	formatBMP     = "bmp"
	formatTIFF    = "tiff"
	formatUnknown = "unknown"
)

// DetectMIME sniffs data and returns its media type without parameters,
// e.g. "image/png" or "text/plain".
func DetectMIME(data []byte) string {
	m := mimetype.Detect(data)
	mt, _, _ := strings.Cut(m.String(), ";")
	return mt
}

// DetectFormat sniffs data and returns the image format name.
func DetectFormat(data []byte) string {
	if len(data) < 4 {
		return formatUnknown
	}
	m := mimetype.Detect(data)
	switch {
	case m.Is("image/jpeg"):
		return formatJPEG
	case m.Is("image/png"):
		return formatPNG
	case m.Is("image/gif"):
		return formatGIF
	case m.Is("image/webp"):
		return formatWebP
	case m.Is("image/bmp"):
		return formatBMP
	case m.Is("image/tiff"):
		return formatTIFF
	}
	return formatUnknown
}

// CloneBytes returns a copy of b (safe for use after the source buffer is released).
func CloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// BytesReader creates an io.Reader over b without copying it.
func BytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
