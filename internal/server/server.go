// Package server hosts the converter behind an HTML form: pick a file and a
// format, preview it, or download the converted image.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	imageconverter "github.com/Skryldev/image-converter"
	"github.com/Skryldev/image-converter/adapters/display"
	"github.com/Skryldev/image-converter/adapters/download"
	"github.com/Skryldev/image-converter/config"
	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
	"github.com/Skryldev/image-converter/hooks"
)

const (
	pageTitle = "Image Converter"

	// multipartMemory is how much of an upload ParseMultipartForm keeps in
	// memory before spilling to a temp file.
	multipartMemory = 8 << 20
)

// Server serves the converter over HTTP.
type Server struct {
	conv   *imageconverter.Converter
	cfg    config.ServerConfig
	logger core.Logger
	router chi.Router
}

// New builds a Server around conv.  A nil logger disables request logging.
func New(conv *imageconverter.Converter, cfg config.ServerConfig, l core.Logger) *Server {
	s := &Server{conv: conv, cfg: cfg, logger: l}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/convert", s.handleConvert)
	r.Post("/preview", s.handlePreview)
	r.Get("/stats", s.handleStats)

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log().Info("server.listen", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ── Handlers ──────────────────────────────────────────────────────────────────

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, display.NewPage(pageTitle, true))
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	sel, cleanup, err := s.selection(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer cleanup()

	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	if _, err := s.conv.Process(r.Context(), sel, download.NewHTTP(ww, s.logger)); err != nil {
		if ww.Status() != 0 {
			// Headers are gone; nothing more can be reported to the client.
			s.log().Warn("server.convert.aborted", "error", err.Error())
			return
		}
		s.fail(ww, r, err)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sel, cleanup, err := s.selection(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer cleanup()

	page := display.NewPage(pageTitle, true)
	if err := s.conv.Preview(r.Context(), sel, page); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writePage(w, page)
}

type statsResponse struct {
	Processed int64                 `json:"processed"`
	Errors    int64                 `json:"errors"`
	Metrics   hooks.MetricsSnapshot `json:"metrics"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	processed, failed := s.conv.Stats()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(statsResponse{
		Processed: processed,
		Errors:    failed,
		Metrics:   s.conv.Metrics(),
	}); err != nil {
		s.log().Error("server.stats.encode", "error", err.Error())
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// selection maps the multipart form onto a core.Selection.  A request with
// no file yields an empty selection, not an error.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (core.Selection, func(), error) {
	nop := func() {}
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return core.Selection{}, nop, apperrors.New(apperrors.CategoryInput, "server.upload", apperrors.ErrImageTooLarge)
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return core.Selection{}, nop, apperrors.Wrap(apperrors.CategoryInput, "server.upload", err)
		}
	}

	sel := core.Selection{Format: r.FormValue("format")}
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return sel, nop, nil
	case err != nil:
		return sel, nop, apperrors.Wrap(apperrors.CategoryInput, "server.upload", err)
	}
	sel.Files = []core.SourceFile{imageconverter.FromReaderWithMeta(
		file, header.Size, header.Header.Get("Content-Type"), header.Filename,
	)}
	return sel, func() { file.Close() }, nil
}

// fail reports err to the client.  The nothing-selected outcome sends the
// browser back to the form.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.IsSkipped(err) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log().Error("server.request.failed", "path", r.URL.Path, "error", err.Error())
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case apperrors.IsCategory(err, apperrors.CategoryInput),
		apperrors.IsCategory(err, apperrors.CategoryDecode):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writePage(w http.ResponseWriter, p *display.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := p.WriteTo(w); err != nil {
		s.log().Error("server.page.write", "error", err.Error())
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log().Debug("server.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) log() core.Logger {
	if s.logger == nil {
		return discardLogger{}
	}
	return s.logger
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...interface{}) {}
func (discardLogger) Info(string, ...interface{})  {}
func (discardLogger) Warn(string, ...interface{})  {}
func (discardLogger) Error(string, ...interface{}) {}
