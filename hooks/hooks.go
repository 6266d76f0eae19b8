// Package hooks provides production-ready Hook and Logger implementations.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger.
// Any slog.Handler works underneath, including a charmbracelet/log Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) {
	s.log.Debug(msg, fields...)
}
func (s *SlogLogger) Info(msg string, fields ...interface{}) {
	s.log.Info(msg, fields...)
}
func (s *SlogLogger) Warn(msg string, fields ...interface{}) {
	s.log.Warn(msg, fields...)
}
func (s *SlogLogger) Error(msg string, fields ...interface{}) {
	s.log.Error(msg, fields...)
}

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs before/after each pipeline step.  With no logger it is
// silent.
type LoggingHook struct {
	mu     sync.RWMutex
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.  l may be nil.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

// SetLogger replaces the logger.  Safe to call while steps run.
func (h *LoggingHook) SetLogger(l core.Logger) {
	h.mu.Lock()
	h.logger = l
	h.mu.Unlock()
}

func (h *LoggingHook) current() core.Logger {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.logger
}

func (h *LoggingHook) BeforeStep(_ context.Context, stepName string, c *core.Conversion) {
	l := h.current()
	if l == nil {
		return
	}
	l.Debug("pipeline.step.start",
		"step", stepName,
		"file", c.Source.Name,
		"format", c.Format,
	)
}

func (h *LoggingHook) AfterStep(_ context.Context, stepName string, c *core.Conversion, d time.Duration, err error) {
	l := h.current()
	if l == nil {
		return
	}
	if err != nil {
		l.Error("pipeline.step.error",
			"step", stepName,
			"duration_ms", d.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	l.Debug("pipeline.step.done",
		"step", stepName,
		"duration_ms", d.Milliseconds(),
		"output", describe(c),
	)
}

func describe(c *core.Conversion) string {
	switch {
	case c == nil:
		return "nil"
	case c.Filename != "":
		return c.Filename
	case c.OutputURL != "":
		return fmt.Sprintf("%dx%d %s %dB", c.Width, c.Height, c.Format, c.OutputURL.Size())
	case c.Image != nil:
		return fmt.Sprintf("%dx%d %s", c.Width, c.Height, c.Image.Format)
	default:
		return fmt.Sprintf("%s %dB", c.Source.Name, c.SourceURL.Size())
	}
}

// ── In-memory metrics collector ───────────────────────────────────────────────

// InMemoryMetrics accumulates metrics atomically; safe for concurrent use.
type InMemoryMetrics struct {
	mu sync.RWMutex

	stepDurationsMs map[string]int64 // cumulative ms per step
	stepCalls       map[string]int64 // call count per step
	stepErrors      map[string]int64
	errorCategories map[string]int64

	totalThroughputB int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		stepDurationsMs: make(map[string]int64),
		stepCalls:       make(map[string]int64),
		stepErrors:      make(map[string]int64),
		errorCategories: make(map[string]int64),
	}
}

func (m *InMemoryMetrics) RecordProcessingTime(stepName string, d interface{ Seconds() float64 }) {
	ms := int64(d.Seconds() * 1000)
	m.mu.Lock()
	m.stepDurationsMs[stepName] += ms
	m.stepCalls[stepName]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordThroughput(bytes int64) {
	if bytes > 0 {
		atomic.AddInt64(&m.totalThroughputB, bytes)
	}
}

func (m *InMemoryMetrics) RecordError(stepName string, category string) {
	m.mu.Lock()
	m.stepErrors[stepName]++
	m.errorCategories[category]++
	m.mu.Unlock()
}

// Snapshot returns a copy of current metrics.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		StepDurationsMs:  copyCounts(m.stepDurationsMs),
		StepCalls:        copyCounts(m.stepCalls),
		StepErrors:       copyCounts(m.stepErrors),
		ErrorCategories:  copyCounts(m.errorCategories),
		TotalThroughputB: atomic.LoadInt64(&m.totalThroughputB),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	StepDurationsMs  map[string]int64 `json:"step_durations_ms"`
	StepCalls        map[string]int64 `json:"step_calls"`
	StepErrors       map[string]int64 `json:"step_errors"`
	ErrorCategories  map[string]int64 `json:"error_categories"`
	TotalThroughputB int64            `json:"total_throughput_bytes"`
}

// ── Metrics hook ──────────────────────────────────────────────────────────────

// MetricsHook feeds pipeline events into a MetricsCollector.  Throughput is
// the encoded output size, counted once per successful render.
type MetricsHook struct {
	collector core.MetricsCollector
}

// NewMetricsHook creates a MetricsHook.
func NewMetricsHook(c core.MetricsCollector) *MetricsHook { return &MetricsHook{collector: c} }

func (h *MetricsHook) BeforeStep(_ context.Context, _ string, _ *core.Conversion) {}

func (h *MetricsHook) AfterStep(_ context.Context, stepName string, c *core.Conversion, d time.Duration, err error) {
	h.collector.RecordProcessingTime(stepName, d)
	if err != nil {
		h.collector.RecordError(stepName, string(category(err)))
		return
	}
	if c != nil && c.OutputURL != "" && c.Filename == "" {
		h.collector.RecordThroughput(c.OutputURL.Size())
	}
}

func category(err error) apperrors.Category {
	var pe *apperrors.ProcessingError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return apperrors.CategoryPipeline
}

var (
	_ core.Logger           = (*SlogLogger)(nil)
	_ core.Hook             = (*LoggingHook)(nil)
	_ core.Hook             = (*MetricsHook)(nil)
	_ core.MetricsCollector = (*InMemoryMetrics)(nil)
)
