package core

import (
	"context"
	"image"
	"io"
	"time"
)

// FileReader turns a selected file into its DataURL.
type FileReader interface {
	Read(ctx context.Context, file SourceFile) (DataURL, error)
}

// ImageDecoder decodes a DataURL into a DecodedImage.
type ImageDecoder interface {
	Decode(ctx context.Context, url DataURL) (*DecodedImage, error)
}

// CanvasRenderer paints a decoded image onto a surface of the same size and
// serialises it in the target format.
type CanvasRenderer interface {
	Render(ctx context.Context, img *DecodedImage, format Format) (DataURL, error)
}

// DownloadTrigger saves a DataURL under the given filename.
type DownloadTrigger interface {
	Trigger(ctx context.Context, url DataURL, filename string) error
}

// Display is the preview surface.  It starts hidden and becomes visible once
// Show is called.
type Display interface {
	Hide(ctx context.Context) error
	Show(ctx context.Context, url DataURL) error
}

// Decoder converts raw bytes of one format into a DecodedImage.
// Implementations live in adapters/decoder/.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) (*DecodedImage, error)
	// CanDecode reports whether this decoder handles the given format hint.
	CanDecode(format Format) bool
}

// Encoder serialises a raster to bytes in a target format.
// Implementations live in adapters/encoder/.
type Encoder interface {
	Encode(ctx context.Context, img image.Image, opts EncodeOptions) ([]byte, error)
	CanEncode(format Format) bool
}

// EncodeOptions carries format-specific encoding parameters.
type EncodeOptions struct {
	Quality  int  // 1-100; 0 = use encoder default
	Lossless bool // WebP lossless mode
}

// StorageAdapter persists converted files.
// Implementations live in adapters/storage/.
type StorageAdapter interface {
	Put(ctx context.Context, key StorageKey, r io.Reader) error
	Get(ctx context.Context, key StorageKey) (io.ReadCloser, error)
	Exists(ctx context.Context, key StorageKey) (bool, error)
}

// Registry maps Format values to Decoder/Encoder implementations.
type Registry interface {
	DecoderFor(format Format) (Decoder, bool)
	EncoderFor(format Format) (Encoder, bool)
	RegisterDecoder(format Format, d Decoder)
	RegisterEncoder(format Format, e Encoder)
}

// Step is the fundamental pipeline building block.  Each Step transforms a
// *Conversion value and must be safe for concurrent use across goroutines.
type Step interface {
	Name() string
	Execute(ctx context.Context, c *Conversion) (*Conversion, error)
}

// Hook is an optional observer invoked around pipeline steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, c *Conversion)
	AfterStep(ctx context.Context, stepName string, c *Conversion, d time.Duration, err error)
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d interface{ Seconds() float64 })
	RecordThroughput(bytes int64)
	RecordError(stepName string, category string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}
