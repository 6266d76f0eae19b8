// Package display implements core.Display as an HTML page: a conversion form
// and an <img> preview element that stays hidden until Show is called.
package display

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"sync"

	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{- if .Form}}
<form method="post" enctype="multipart/form-data">
  <input type="file" id="file" name="file" accept="image/*">
  <select id="format" name="format">
  {{- range .Formats}}
    <option value="{{.}}">{{.}}</option>
  {{- end}}
  </select>
  <button type="submit" formaction="/preview">Preview</button>
  <button type="submit" formaction="/convert">Convert</button>
</form>
{{- end}}
<img id="preview" alt="preview" style="display: {{if .Visible}}inline-block{{else}}none{{end}}"{{if .Visible}} src="{{.Src}}"{{end}}>
</body>
</html>
`))

type pageData struct {
	Title   string
	Form    bool
	Formats []core.Format
	Visible bool
	Src     template.URL
}

// Page is an HTML preview surface.  It is safe for concurrent use.
type Page struct {
	Title string
	// Form renders the file/format form above the preview.
	Form bool

	mu      sync.Mutex
	visible bool
	src     core.DataURL
}

// NewPage returns a hidden page.
func NewPage(title string, form bool) *Page {
	return &Page{Title: title, Form: form}
}

func (p *Page) Hide(_ context.Context) error {
	p.mu.Lock()
	p.visible = false
	p.src = ""
	p.mu.Unlock()
	return nil
}

func (p *Page) Show(ctx context.Context, url core.DataURL) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryPipeline, "page.show", err)
	}
	if url == "" {
		return apperrors.New(apperrors.CategoryInput, "page.show", apperrors.ErrEmptyInput)
	}
	p.mu.Lock()
	p.visible = true
	p.src = url
	p.mu.Unlock()
	return nil
}

// Visible reports whether the preview element is shown.
func (p *Page) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Source returns the DataURL currently shown, or "" when hidden.
func (p *Page) Source() core.DataURL {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src
}

// WriteTo renders the page to w.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	p.mu.Lock()
	data := pageData{
		Title:   p.Title,
		Form:    p.Form,
		Formats: core.OutputFormats,
		Visible: p.visible,
		// Only DataURLs produced by the reader reach Show.
		Src: template.URL(p.src),
	}
	p.mu.Unlock()

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}

var _ core.Display = (*Page)(nil)
