package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Skryldev/image-converter/config"
	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

// Converter is the central orchestrator.  It holds no per-request state and
// is safe for concurrent use once configured; every call runs its own
// pipeline over its own Conversion.
type Converter struct {
	cfg      config.Config
	reader   core.FileReader
	decoder  core.ImageDecoder
	renderer core.CanvasRenderer
	hooks    []core.Hook

	mu     sync.RWMutex
	logger core.Logger

	processedCount int64
	errorCount     int64
}

// NewConverter wires the three conversion components.
func NewConverter(cfg config.Config, r core.FileReader, d core.ImageDecoder, rn core.CanvasRenderer) *Converter {
	return &Converter{cfg: cfg, reader: r, decoder: d, renderer: rn, logger: nopLogger{}}
}

// SetLogger attaches a structured logger.  It may be called while
// conversions are running.
func (c *Converter) SetLogger(l core.Logger) {
	if l == nil {
		l = nopLogger{}
	}
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

// Logger returns the attached logger, never nil.
func (c *Converter) Logger() core.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// AddHook registers pipeline hooks.  Not safe to call concurrently with
// Process or Preview.
func (c *Converter) AddHook(h ...core.Hook) { c.hooks = append(c.hooks, h...) }

// Config returns the configuration the converter was built with.
func (c *Converter) Config() config.Config { return c.cfg }

// Process converts the selected file to the selected format and hands it to
// trigger: read, decode, render, download, each exactly once and in that
// order.  With no file selected it returns ErrMissingInput and runs nothing.
func (c *Converter) Process(ctx context.Context, sel core.Selection, trigger core.DownloadTrigger) (*core.Result, error) {
	file, ok := sel.File()
	if !ok || file.Body == nil || trigger == nil {
		return nil, apperrors.New(apperrors.CategoryInput, "process", apperrors.ErrMissingInput)
	}
	format := core.SelectFormatOr(sel.Format, core.Format(c.cfg.DefaultFormat))

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	logger := c.Logger()
	start := time.Now()
	pl := c.newPipeline().Use(
		&ReadStep{Reader: c.reader},
		&DecodeStep{Decoder: c.decoder},
		&RenderStep{Renderer: c.renderer},
		&DownloadStep{Trigger: trigger},
	)
	logger.Debug("converter.process.start", "file", file.Name, "format", format, "steps", pl.Steps())
	out, timings, err := pl.Run(ctx, &core.Conversion{Source: file, Format: format})
	if err != nil {
		atomic.AddInt64(&c.errorCount, 1)
		logger.Error("converter.process.failed", "file", file.Name, "format", format, "error", err.Error())
		return nil, err
	}
	atomic.AddInt64(&c.processedCount, 1)

	res := &core.Result{
		Filename:       out.Filename,
		Format:         out.Format,
		DataURL:        out.OutputURL,
		Width:          out.Width,
		Height:         out.Height,
		SizeBytes:      out.OutputURL.Size(),
		ProcessingTime: time.Since(start),
		StepTimings:    timings,
	}
	logger.Info("converter.process.done",
		"file", file.Name,
		"filename", res.Filename,
		"format", res.Format,
		"bytes", res.SizeBytes,
		"duration_ms", res.ProcessingTime.Milliseconds(),
	)
	return res, nil
}

// Go runs Process in its own goroutine and reports once on the returned
// channel.  Calls are independent: nothing is queued or deduplicated.
func (c *Converter) Go(ctx context.Context, sel core.Selection, trigger core.DownloadTrigger) (string, <-chan core.JobResult) {
	id := uuid.NewString()
	ch := make(chan core.JobResult, 1)
	go func() {
		defer close(ch)
		res, err := c.Process(ctx, sel, trigger)
		ch <- core.JobResult{JobID: id, Result: res, Err: err}
	}()
	return id, ch
}

// Preview hides d, then shows the selected file on it without conversion.
// It never renders or downloads.  A nil display, or no file, returns
// ErrMissingInput; in the latter case d stays hidden.
func (c *Converter) Preview(ctx context.Context, sel core.Selection, d core.Display) error {
	if d == nil {
		return apperrors.New(apperrors.CategoryInput, "preview", apperrors.ErrMissingInput)
	}
	if err := d.Hide(ctx); err != nil {
		return apperrors.Wrap(apperrors.CategoryPipeline, "preview.hide", err)
	}
	file, ok := sel.File()
	if !ok || file.Body == nil {
		return apperrors.New(apperrors.CategoryInput, "preview", apperrors.ErrMissingInput)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	logger := c.Logger()
	pl := c.newPipeline().Use(
		&ReadStep{Reader: c.reader},
		&ShowStep{Display: d},
	)
	logger.Debug("converter.preview.start", "file", file.Name, "steps", pl.Steps())
	if _, _, err := pl.Run(ctx, &core.Conversion{Source: file}); err != nil {
		atomic.AddInt64(&c.errorCount, 1)
		logger.Error("converter.preview.failed", "file", file.Name, "error", err.Error())
		return err
	}
	logger.Debug("converter.preview.done", "file", file.Name)
	return nil
}

// ProcessedCount returns the total number of successful conversions.
func (c *Converter) ProcessedCount() int64 { return atomic.LoadInt64(&c.processedCount) }

// ErrorCount returns the total number of failed conversions and previews.
func (c *Converter) ErrorCount() int64 { return atomic.LoadInt64(&c.errorCount) }

func (c *Converter) newPipeline() *Pipeline {
	return New().AddHook(c.hooks...)
}

func (c *Converter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.JobTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.JobTimeout)
	}
	return context.WithCancel(ctx)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
