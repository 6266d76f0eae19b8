// Package imageconverter converts a user-selected image file to JPEG, PNG,
// GIF or WebP and hands the result to a download target.
package imageconverter

import (
	"context"
	"io"
	"os"

	"github.com/Skryldev/image-converter/adapters/decoder"
	"github.com/Skryldev/image-converter/adapters/download"
	"github.com/Skryldev/image-converter/adapters/encoder"
	"github.com/Skryldev/image-converter/adapters/reader"
	"github.com/Skryldev/image-converter/adapters/renderer"
	"github.com/Skryldev/image-converter/adapters/storage"
	"github.com/Skryldev/image-converter/config"
	"github.com/Skryldev/image-converter/core"
	"github.com/Skryldev/image-converter/hooks"
	"github.com/Skryldev/image-converter/pipeline"
)

// Re-export Format constants for convenience.
const (
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	GIF  = core.FormatGIF
	WebP = core.FormatWebP
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Backend is an alternative codec set layered over the built-in codecs,
// such as the libvips backend in adapters/vips.
type Backend interface {
	// Register binds the backend's codecs in reg, replacing built-ins.
	Register(reg core.Registry)
	// Shutdown releases the backend's resources.
	Shutdown()
}

// Option customises a Converter at construction time.
type Option func(*Converter)

// WithBackend layers b over the built-in codecs.  Close shuts it down.
func WithBackend(b Backend) Option {
	return func(c *Converter) { c.backend = b }
}

// Converter is the primary entry point.
type Converter struct {
	inner   *pipeline.Converter
	reg     *core.DefaultRegistry
	metrics *hooks.InMemoryMetrics
	stepLog *hooks.LoggingHook
	backend Backend
}

// New creates a fully wired Converter with decoders for every supported input
// format and encoders for every output format.  Pass a custom config.Config
// to override defaults.
func New(cfg config.Config, opts ...Option) *Converter {
	c := &Converter{
		reg:     core.NewRegistry(),
		metrics: hooks.NewInMemoryMetrics(),
		stepLog: hooks.NewLoggingHook(nil),
	}
	for _, opt := range opts {
		opt(c)
	}

	decoder.RegisterDefaults(c.reg)
	encoder.RegisterDefaults(c.reg, cfg.DefaultQuality)
	if c.backend != nil {
		c.backend.Register(c.reg)
	}

	c.inner = pipeline.NewConverter(cfg,
		reader.New(cfg.MaxImageBytes, cfg.ChunkSize),
		decoder.NewDataURL(c.reg),
		renderer.NewCanvas(c.reg, cfg.DefaultQuality),
	)
	c.inner.AddHook(hooks.NewMetricsHook(c.metrics), c.stepLog)
	return c
}

// Close releases backend resources.  The Converter must not be used
// afterwards.
func (c *Converter) Close() {
	if c.backend != nil {
		c.backend.Shutdown()
	}
}

// SetLogger attaches a structured logger and logs every pipeline step at
// debug level.  A later call replaces the earlier logger; nil silences both.
func (c *Converter) SetLogger(l core.Logger) {
	c.inner.SetLogger(l)
	c.stepLog.SetLogger(l)
}

// AddHook registers an observer for pipeline step events.  Not safe to call
// concurrently with Process or Preview.
func (c *Converter) AddHook(h core.Hook) { c.inner.AddHook(h) }

// RegisterDecoder registers a custom decoder for the given format.
func (c *Converter) RegisterDecoder(f core.Format, d core.Decoder) { c.reg.RegisterDecoder(f, d) }

// RegisterEncoder registers a custom encoder for the given format.
func (c *Converter) RegisterEncoder(f core.Format, e core.Encoder) { c.reg.RegisterEncoder(f, e) }

// Process reads, decodes, renders and downloads the selected file.
func (c *Converter) Process(ctx context.Context, sel core.Selection, trigger core.DownloadTrigger) (*core.Result, error) {
	return c.inner.Process(ctx, sel, trigger)
}

// Go runs Process asynchronously and returns a job ID with its result channel.
func (c *Converter) Go(ctx context.Context, sel core.Selection, trigger core.DownloadTrigger) (string, <-chan core.JobResult) {
	return c.inner.Go(ctx, sel, trigger)
}

// Preview shows the selected file on d without converting it.
func (c *Converter) Preview(ctx context.Context, sel core.Selection, d core.Display) error {
	return c.inner.Preview(ctx, sel, d)
}

// ConvertFile converts the file at path and writes the result into dir.
func (c *Converter) ConvertFile(ctx context.Context, path, format, dir string) (*core.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var size int64 = -1
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	trigger, err := c.ToDir(dir)
	if err != nil {
		return nil, err
	}
	return c.Process(ctx, Select(format, FromReaderWithMeta(f, size, "", path)), trigger)
}

// ToDir returns a DownloadTrigger that saves files into dir, creating it if
// needed.
func (c *Converter) ToDir(dir string) (core.DownloadTrigger, error) {
	perm := os.FileMode(c.inner.Config().Local.Permissions)
	if perm == 0 {
		perm = 0o644
	}
	s, err := storage.NewLocal(dir, perm)
	if err != nil {
		return nil, err
	}
	return download.NewDisk(s, c.inner.Logger()), nil
}

// Stats returns lightweight processing statistics.
func (c *Converter) Stats() (processed, errors int64) {
	return c.inner.ProcessedCount(), c.inner.ErrorCount()
}

// Metrics returns per-step timing, error and throughput counters.
func (c *Converter) Metrics() hooks.MetricsSnapshot { return c.metrics.Snapshot() }

// Config returns the configuration the Converter was built with.
func (c *Converter) Config() config.Config { return c.inner.Config() }

// SelectFormat maps the raw format control value to an output format.
func SelectFormat(raw string) core.Format { return core.SelectFormat(raw) }

// OutputFilename derives the download name for a source file.
func OutputFilename(name string, f core.Format) string { return core.OutputFilename(name, f) }

// ── Source constructors ────────────────────────────────────────────────────────

// FromReader creates a SourceFile from an io.Reader.
func FromReader(name string, r io.Reader) core.SourceFile {
	return core.SourceFile{Name: name, Body: r, Size: -1}
}

// FromReaderWithMeta creates a SourceFile with known size and content-type hints.
func FromReaderWithMeta(r io.Reader, size int64, contentType, name string) core.SourceFile {
	return core.SourceFile{Body: r, Size: size, ContentType: contentType, Name: name}
}

// Select builds a Selection from the format control value and the chosen
// files.  Only the first file is converted.
func Select(format string, files ...core.SourceFile) core.Selection {
	return core.Selection{Files: files, Format: format}
}
