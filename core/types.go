package core

import (
	"encoding/base64"
	"image"
	"io"
	"strings"
	"time"
)

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatUnknown Format = "unknown"
)

// OutputFormats is the fixed set a conversion can target, in selection order.
// The first entry is the default.
var OutputFormats = []Format{FormatJPEG, FormatPNG, FormatGIF, FormatWebP}

// DefaultFormat is used whenever the requested format is not recognised.
const DefaultFormat = FormatJPEG

// MIMEType returns "image/<format>".
func (f Format) MIMEType() string { return "image/" + string(f) }

// IsOutput reports whether f belongs to OutputFormats.
func (f Format) IsOutput() bool {
	for _, o := range OutputFormats {
		if f == o {
			return true
		}
	}
	return false
}

// ColorSpace represents the image colour model.
type ColorSpace string

const (
	ColorSpaceRGB     ColorSpace = "rgb"
	ColorSpaceRGBA    ColorSpace = "rgba"
	ColorSpaceCMYK    ColorSpace = "cmyk"
	ColorSpaceGray    ColorSpace = "gray"
	ColorSpacePalette ColorSpace = "palette"
)

// DataURL is an RFC 2397 "data:" URL.  Pipeline stages pass it along without
// looking inside; only the reader, decoder, renderer and download adapters
// build or parse it.
type DataURL string

// Size returns the decoded payload size of a base64 DataURL, or -1 when the
// URL is not base64-encoded.
func (u DataURL) Size() int64 {
	s := string(u)
	i := strings.IndexByte(s, ',')
	if i < 0 || !strings.HasSuffix(s[:i], ";base64") {
		return -1
	}
	payload := s[i+1:]
	pad := 0
	if n := len(payload); n >= 2 {
		pad = strings.Count(payload[n-2:], "=")
	}
	return int64(base64.StdEncoding.DecodedLen(len(payload)) - pad)
}

// SourceFile is the user-supplied input file.
type SourceFile struct {
	Name        string    // original filename, used for the output name
	Body        io.Reader // raw bytes
	Size        int64     // -1 if unknown
	ContentType string    // optional hint
}

// Selection mirrors the two input controls of a conversion request.
type Selection struct {
	// Files holds the selected files; only the first is used.  Empty means
	// nothing was selected.
	Files []SourceFile
	// Format is the raw value of the format control.  Empty when the
	// control is absent.
	Format string
}

// File returns the first selected file.
func (s Selection) File() (SourceFile, bool) {
	if len(s.Files) == 0 {
		return SourceFile{}, false
	}
	return s.Files[0], true
}

// DecodedImage is an in-memory raster with resolved dimensions.
type DecodedImage struct {
	Image      image.Image
	Width      int
	Height     int
	Format     Format // source format
	ColorSpace ColorSpace
	HasAlpha   bool
}

// Conversion is the per-request state carried through pipeline steps.
// Each step returns a modified copy; nothing is shared across requests.
type Conversion struct {
	Source SourceFile
	Format Format

	SourceURL DataURL       // set by the read step
	Image     *DecodedImage // set by the decode step, cleared once rendered
	Width     int           // set by the decode step
	Height    int
	OutputURL DataURL // set by the render step
	Filename  string  // set by the download step
}

// Result is returned to the caller after a conversion completes.
type Result struct {
	Filename  string
	Format    Format
	DataURL   DataURL
	Width     int
	Height    int
	SizeBytes int64 // encoded output size

	ProcessingTime time.Duration
	StepTimings    map[string]time.Duration
}

// JobResult wraps the outcome of an asynchronous conversion.
type JobResult struct {
	JobID  string
	Result *Result
	Err    error
}

// StorageKey uniquely identifies a stored file.
type StorageKey struct {
	Bucket string
	Path   string
}
