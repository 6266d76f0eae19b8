package download_test

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/vincent-petithory/dataurl"

	"github.com/Skryldev/image-converter/adapters/download"
	"github.com/Skryldev/image-converter/adapters/storage"
	"github.com/Skryldev/image-converter/core"
)

var payload = []byte{0x89, 'P', 'N', 'G', 1, 2, 3}

func url() core.DataURL {
	return core.DataURL(dataurl.New(payload, "image/png").String())
}

func TestDisk_WritesFilename(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocal(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := download.NewDisk(local, nil).Trigger(context.Background(), url(), "photo.png"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "photo.png"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("content mismatch: %v", got)
	}
}

func TestDisk_BadURL(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	d := download.NewDisk(local, nil)
	if err := d.Trigger(context.Background(), "", "x.png"); err == nil {
		t.Error("expected error for empty url")
	}
	if err := d.Trigger(context.Background(), "garbage", "x.png"); err == nil {
		t.Error("expected error for malformed url")
	}
}

func TestHTTP_Attachment(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := download.NewHTTP(rec, nil).Trigger(context.Background(), url(), "my photo.png"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	res := rec.Result()
	if ct := res.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := res.Header.Get("Content-Disposition"); cd != `attachment; filename="my photo.png"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body, _ := io.ReadAll(res.Body)
	if string(body) != string(payload) {
		t.Errorf("body mismatch: %v", body)
	}
}
