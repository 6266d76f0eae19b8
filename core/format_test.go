package core_test

import (
	"testing"

	"github.com/Skryldev/image-converter/core"
)

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		raw  string
		want core.Format
	}{
		{"jpeg", core.FormatJPEG},
		{"JPEG", core.FormatJPEG},
		{"png", core.FormatPNG},
		{"PnG", core.FormatPNG},
		{"gif", core.FormatGIF},
		{"GIF", core.FormatGIF},
		{"webp", core.FormatWebP},
		{"WebP", core.FormatWebP},
		{"", core.FormatJPEG},
		{"jpg", core.FormatJPEG},
		{"bmp", core.FormatJPEG},
		{"tiff", core.FormatJPEG},
		{" png", core.FormatJPEG},
		{"image/png", core.FormatJPEG},
	}
	for _, tc := range tests {
		if got := core.SelectFormat(tc.raw); got != tc.want {
			t.Errorf("SelectFormat(%q) = %s; want %s", tc.raw, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want core.Format
	}{
		{"image/jpeg", core.FormatJPEG},
		{"image/png", core.FormatPNG},
		{"IMAGE/GIF", core.FormatGIF},
		{"image/webp", core.FormatWebP},
		{"image/bmp", core.FormatBMP},
		{"image/x-ms-bmp", core.FormatBMP},
		{"image/tiff", core.FormatTIFF},
		{"jpg", core.FormatJPEG},
		{"text/plain; charset=utf-8", core.FormatUnknown},
		{"", core.FormatUnknown},
	}
	for _, tc := range tests {
		if got := core.ParseFormat(tc.in); got != tc.want {
			t.Errorf("ParseFormat(%q) = %s; want %s", tc.in, got, tc.want)
		}
	}
}

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		name   string
		format core.Format
		want   string
	}{
		{"photo.jpg", core.FormatPNG, "photo.png"},
		{"archive.tar.gz", core.FormatWebP, "archive.tar.webp"},
		{"", core.FormatGIF, "image.gif"},
		{"README", core.FormatPNG, "README.png"},
		{".hidden", core.FormatJPEG, "image.jpeg"},
		{"dir/sub/cat.PNG", core.FormatJPEG, "cat.jpeg"},
		{`C:\Users\me\dog.bmp`, core.FormatGIF, "dog.gif"},
		{"scan.tiff", core.FormatTIFF, "scan.tiff"},
	}
	for _, tc := range tests {
		if got := core.OutputFilename(tc.name, tc.format); got != tc.want {
			t.Errorf("OutputFilename(%q, %s) = %q; want %q", tc.name, tc.format, got, tc.want)
		}
	}
}

func TestFormatMIMEType(t *testing.T) {
	for _, f := range core.OutputFormats {
		if got, want := f.MIMEType(), "image/"+string(f); got != want {
			t.Errorf("MIMEType(%s) = %s; want %s", f, got, want)
		}
		if !f.IsOutput() {
			t.Errorf("%s should be an output format", f)
		}
	}
	if core.FormatBMP.IsOutput() {
		t.Error("bmp must not be an output format")
	}
}

func TestSelectionFile(t *testing.T) {
	if _, ok := (core.Selection{}).File(); ok {
		t.Error("empty selection reported a file")
	}
	sel := core.Selection{Files: []core.SourceFile{{Name: "a.png"}, {Name: "b.png"}}}
	f, ok := sel.File()
	if !ok || f.Name != "a.png" {
		t.Errorf("File() = %q, %v; want a.png, true", f.Name, ok)
	}
}

func TestSelectFormatOr(t *testing.T) {
	if got := core.SelectFormatOr("bogus", core.FormatPNG); got != core.FormatPNG {
		t.Errorf("fallback png: got %s", got)
	}
	if got := core.SelectFormatOr("GIF", core.FormatPNG); got != core.FormatGIF {
		t.Errorf("valid value: got %s", got)
	}
	if got := core.SelectFormatOr("", core.FormatBMP); got != core.FormatJPEG {
		t.Errorf("invalid fallback: got %s", got)
	}
}

func TestDataURLSize(t *testing.T) {
	tests := []struct {
		url  core.DataURL
		want int64
	}{
		{"data:image/png;base64,AAAA", 3},
		{"data:image/png;base64,AAA=", 2},
		{"data:image/png;base64,AA==", 1},
		{"data:image/png;base64,", 0},
		{"data:text/plain,hello", -1},
		{"nonsense", -1},
	}
	for _, tc := range tests {
		if got := tc.url.Size(); got != tc.want {
			t.Errorf("Size(%q) = %d; want %d", tc.url, got, tc.want)
		}
	}
}
