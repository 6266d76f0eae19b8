package imageconverter_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/webp"

	imageconverter "github.com/Skryldev/image-converter"
	"github.com/Skryldev/image-converter/adapters/display"
	"github.com/Skryldev/image-converter/core"
	apperrors "github.com/Skryldev/image-converter/errors"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

func newRedJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func newHalfTransparentPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if x < w/2 {
				a = 0
			}
			img.Set(x, y, color.NRGBA{R: 50, G: 50, B: 200, A: a})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func newConverter(t *testing.T) *imageconverter.Converter {
	t.Helper()
	c := imageconverter.New(imageconverter.DefaultConfig())
	t.Cleanup(c.Close)
	return c
}

func decodeOutput(t *testing.T, f core.Format, data []byte) image.Image {
	t.Helper()
	var (
		img image.Image
		err error
	)
	r := bytes.NewReader(data)
	switch f {
	case core.FormatJPEG:
		img, err = jpeg.Decode(r)
	case core.FormatPNG:
		img, err = png.Decode(r)
	case core.FormatGIF:
		img, err = gif.Decode(r)
	case core.FormatWebP:
		img, err = webp.Decode(r)
	default:
		t.Fatalf("no decoder for %s", f)
	}
	if err != nil {
		t.Fatalf("decode %s output: %v", f, err)
	}
	return img
}

// ── End-to-end ────────────────────────────────────────────────────────────────

func TestConvertFile_AllFormats(t *testing.T) {
	conv := newConverter(t)
	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, newRedJPEG(t, 64, 48), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, f := range core.OutputFormats {
		t.Run(string(f), func(t *testing.T) {
			out := t.TempDir()
			res, err := conv.ConvertFile(context.Background(), src, string(f), out)
			if err != nil {
				t.Fatalf("ConvertFile: %v", err)
			}
			want := "photo." + string(f)
			if res.Filename != want {
				t.Errorf("filename = %q; want %q", res.Filename, want)
			}
			data, err := os.ReadFile(filepath.Join(out, want))
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if int64(len(data)) != res.SizeBytes {
				t.Errorf("size on disk %d; result says %d", len(data), res.SizeBytes)
			}
			b := decodeOutput(t, f, data).Bounds()
			if b.Dx() != 64 || b.Dy() != 48 {
				t.Errorf("output is %dx%d; want 64x48", b.Dx(), b.Dy())
			}
		})
	}
}

func TestProcess_NamesFromSource(t *testing.T) {
	conv := newConverter(t)
	tests := []struct {
		name, format, want string
	}{
		{"photo.jpg", "png", "photo.png"},
		{"archive.tar.gz", "WEBP", "archive.tar.webp"},
		{"README", "gif", "README.gif"},
		{"", "", "image.jpeg"},
		{"shot.png", "bmp", "shot.jpeg"},
	}
	raw := newRedJPEG(t, 8, 8)
	for _, tc := range tests {
		dir := t.TempDir()
		trig, err := conv.ToDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		sel := imageconverter.Select(tc.format, imageconverter.FromReader(tc.name, bytes.NewReader(raw)))
		res, err := conv.Process(context.Background(), sel, trig)
		if err != nil {
			t.Fatalf("%q: %v", tc.name, err)
		}
		if res.Filename != tc.want {
			t.Errorf("%q/%q: filename %q; want %q", tc.name, tc.format, res.Filename, tc.want)
		}
		if _, err := os.Stat(filepath.Join(dir, tc.want)); err != nil {
			t.Errorf("%q: output missing: %v", tc.want, err)
		}
	}
}

func TestProcess_PreservesTransparencyInPNG(t *testing.T) {
	conv := newConverter(t)
	out := t.TempDir()
	trig, err := conv.ToDir(out)
	if err != nil {
		t.Fatal(err)
	}
	sel := imageconverter.Select("png", imageconverter.FromReader("half.png", bytes.NewReader(newHalfTransparentPNG(t, 10, 4))))
	if _, err := conv.Process(context.Background(), sel, trig); err != nil {
		t.Fatalf("Process: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "half.png"))
	if err != nil {
		t.Fatal(err)
	}
	img := decodeOutput(t, core.FormatPNG, data)
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("left pixel alpha = %d; want 0", a)
	}
	if _, _, _, a := img.At(9, 0).RGBA(); a != 0xffff {
		t.Errorf("right pixel alpha = %d; want opaque", a)
	}
}

func TestProcess_NoFileSelected(t *testing.T) {
	conv := newConverter(t)
	dir := t.TempDir()
	trig, err := conv.ToDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	_, err = conv.Process(context.Background(), imageconverter.Select("png"), trig)
	if !apperrors.IsSkipped(err) {
		t.Fatalf("got %v; want ErrMissingInput", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("files written: %v", entries)
	}
	if p, e := conv.Stats(); p != 0 || e != 0 {
		t.Errorf("stats = %d/%d; want 0/0", p, e)
	}
}

func TestProcess_CorruptInput(t *testing.T) {
	conv := newConverter(t)
	trig, err := conv.ToDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sel := imageconverter.Select("png", imageconverter.FromReader("notes.txt", bytes.NewReader([]byte("not an image"))))
	if _, err := conv.Process(context.Background(), sel, trig); err == nil {
		t.Fatal("expected error for non-image input")
	}
	if _, e := conv.Stats(); e != 1 {
		t.Errorf("error count = %d; want 1", e)
	}
}

func TestPreview_ShowsSourceUnchanged(t *testing.T) {
	conv := newConverter(t)
	raw := newRedJPEG(t, 16, 16)
	page := display.NewPage("Preview", false)

	sel := imageconverter.Select("webp", imageconverter.FromReader("photo.jpg", bytes.NewReader(raw)))
	if err := conv.Preview(context.Background(), sel, page); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !page.Visible() {
		t.Fatal("page not visible")
	}
	if got := page.Source().Size(); got != int64(len(raw)) {
		t.Errorf("shown %d bytes; want the %d source bytes", got, len(raw))
	}

	if err := conv.Preview(context.Background(), imageconverter.Select(""), page); !apperrors.IsSkipped(err) {
		t.Errorf("got %v; want ErrMissingInput", err)
	}
	if page.Visible() {
		t.Error("page still visible after empty selection")
	}
}

func TestMetricsCountRenderedBytes(t *testing.T) {
	conv := newConverter(t)
	trig, err := conv.ToDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	res, err := conv.Process(context.Background(),
		imageconverter.Select("png", imageconverter.FromReader("a.jpg", bytes.NewReader(newRedJPEG(t, 12, 12)))), trig)
	if err != nil {
		t.Fatal(err)
	}
	snap := conv.Metrics()
	if snap.TotalThroughputB != res.SizeBytes {
		t.Errorf("throughput = %d; want %d", snap.TotalThroughputB, res.SizeBytes)
	}
	if snap.StepCalls["render"] != 1 {
		t.Errorf("render calls = %d", snap.StepCalls["render"])
	}
}

// ── Concurrency ───────────────────────────────────────────────────────────────

func TestGo_Concurrent(t *testing.T) {
	conv := newConverter(t)
	raw := newRedJPEG(t, 32, 32)
	dir := t.TempDir()
	trig, err := conv.ToDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		_, ch := conv.Go(context.Background(),
			imageconverter.Select("png", imageconverter.FromReader("same.jpg", bytes.NewReader(raw))), trig)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := <-ch; res.Err != nil {
				errs <- res.Err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("job failed: %v", err)
	}
	if p, _ := conv.Stats(); p != n {
		t.Errorf("processed = %d; want %d", p, n)
	}
}

func TestSelectFormat(t *testing.T) {
	if got := imageconverter.SelectFormat("PNG"); got != imageconverter.PNG {
		t.Errorf("SelectFormat(PNG) = %s", got)
	}
	if got := imageconverter.SelectFormat("avif"); got != imageconverter.JPEG {
		t.Errorf("SelectFormat(avif) = %s", got)
	}
	if got := imageconverter.OutputFilename("a.b.c", imageconverter.GIF); got != "a.b.gif" {
		t.Errorf("OutputFilename = %s", got)
	}
}

// ── Backend and logger wiring ─────────────────────────────────────────────────

type countingEncoder struct {
	mu    sync.Mutex
	calls int
}

func (e *countingEncoder) Encode(_ context.Context, img image.Image, _ core.EncodeOptions) ([]byte, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	return buf.Bytes(), err
}

func (e *countingEncoder) CanEncode(f core.Format) bool { return f == core.FormatPNG }

type fakeBackend struct {
	enc      *countingEncoder
	shutdown int
}

func (b *fakeBackend) Register(reg core.Registry) { reg.RegisterEncoder(core.FormatPNG, b.enc) }
func (b *fakeBackend) Shutdown()                  { b.shutdown++ }

func TestWithBackend_ReplacesBuiltinCodecs(t *testing.T) {
	b := &fakeBackend{enc: &countingEncoder{}}
	c := imageconverter.New(imageconverter.DefaultConfig(), imageconverter.WithBackend(b))

	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, newRedJPEG(t, 8, 4), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ConvertFile(context.Background(), src, "png", t.TempDir()); err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if b.enc.calls != 1 {
		t.Errorf("backend encoder calls = %d; want 1", b.enc.calls)
	}

	c.Close()
	if b.shutdown != 1 {
		t.Errorf("shutdown calls = %d; want 1", b.shutdown)
	}
}

type stepCounter struct {
	mu     sync.Mutex
	starts int
}

func (l *stepCounter) Debug(msg string, _ ...interface{}) {
	if msg == "pipeline.step.start" {
		l.mu.Lock()
		l.starts++
		l.mu.Unlock()
	}
}
func (l *stepCounter) Info(string, ...interface{})  {}
func (l *stepCounter) Warn(string, ...interface{})  {}
func (l *stepCounter) Error(string, ...interface{}) {}

func TestSetLogger_ReplacesStepLogging(t *testing.T) {
	c := newConverter(t)
	first, second := &stepCounter{}, &stepCounter{}
	c.SetLogger(first)
	c.SetLogger(second)
	c.SetLogger(second)

	src := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(src, newRedJPEG(t, 8, 4), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ConvertFile(context.Background(), src, "gif", t.TempDir()); err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if first.starts != 0 {
		t.Errorf("replaced logger saw %d step logs", first.starts)
	}
	if second.starts != 4 {
		t.Errorf("step logs = %d; want one per step (4)", second.starts)
	}
}
