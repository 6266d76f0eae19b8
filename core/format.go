package core

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fallbackBase replaces an empty base name in OutputFilename.
const fallbackBase = "image"

// SelectFormat lower-cases the raw value of the format control and accepts it
// only if it names one of OutputFormats.  Anything else, including an empty
// value for an absent control, selects DefaultFormat.
func SelectFormat(raw string) Format {
	return SelectFormatOr(raw, DefaultFormat)
}

// SelectFormatOr is SelectFormat with a caller-chosen fallback.  A fallback
// outside OutputFormats is replaced by DefaultFormat.
func SelectFormatOr(raw string, fallback Format) Format {
	f := Format(cases.Lower(language.Und).String(raw))
	if f.IsOutput() {
		return f
	}
	if fallback.IsOutput() {
		return fallback
	}
	return DefaultFormat
}

// ParseFormat maps a MIME type or a bare format name to a Format.  Unlike
// SelectFormat it covers input-only formats and returns FormatUnknown when
// nothing matches.
func ParseFormat(s string) Format {
	s = cases.Lower(language.Und).String(strings.TrimSpace(s))
	if mt, _, ok := strings.Cut(s, ";"); ok {
		s = strings.TrimSpace(mt)
	}
	s = strings.TrimPrefix(s, "image/")
	switch s {
	case "jpeg", "jpg", "pjpeg":
		return FormatJPEG
	case "png":
		return FormatPNG
	case "gif":
		return FormatGIF
	case "webp":
		return FormatWebP
	case "bmp", "x-ms-bmp":
		return FormatBMP
	case "tiff", "tif":
		return FormatTIFF
	}
	return FormatUnknown
}

// OutputFilename derives the download name from the source name: directory
// components and the final "." segment are dropped, an empty base becomes
// "image", and the format is appended.
//
//	photo.jpg      + png  -> photo.png
//	archive.tar.gz + webp -> archive.tar.webp
//	""             + gif  -> image.gif
func OutputFilename(name string, format Format) string {
	// Some browsers send the full client-side path.
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	parts := strings.Split(name, ".")
	if len(parts) > 1 {
		parts = parts[:len(parts)-1]
	}
	base := strings.Join(parts, ".")
	if base == "" {
		base = fallbackBase
	}
	return base + "." + string(format)
}
