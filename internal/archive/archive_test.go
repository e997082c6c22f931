package archive

import (
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"pagewright/internal/imageio"
	"pagewright/internal/testsupport"
)

func TestWriterLayout(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, "Vol. 1: Start")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.Title() != "Vol 1 Start" {
		t.Fatalf("Title() = %q", w.Title())
	}
	for i := 1; i <= 2; i++ {
		if err := w.AddImage(i, testsupport.Uniform(4, 4, color.White), 90); err != nil {
			t.Fatalf("AddImage(%d): %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	wantPath := filepath.Join(dir, "Vol 1 Start.zip")
	if w.Path() != wantPath {
		t.Fatalf("Path() = %q, want %q", w.Path(), wantPath)
	}
	names, err := List(wantPath)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 || names[0] != "Vol 1 Start/001.jpg" || names[1] != "Vol 1 Start/002.jpg" {
		t.Fatalf("entries = %v", names)
	}
	if _, err := os.Stat(wantPath + ".partial"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected partial archive to be removed, stat err = %v", err)
	}
}

func TestWriterKeepsLockFileAndReleasesLock(t *testing.T) {
	dir := t.TempDir()
	first, err := Create(dir, "book")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := first.AddImage(1, testsupport.Uniform(4, 4, color.White), 90); err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(first.Path() + ".lock"); err != nil {
		t.Fatalf("expected lock file to stay in place: %v", err)
	}

	second, err := Create(dir, "book")
	if err != nil {
		t.Fatalf("Create after Close: %v", err)
	}
	if err := second.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
}

func TestWriterEntriesDecode(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, "pages")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.AddImage(7, testsupport.Gradient(16, 8), 95); err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := zip.OpenReader(w.Path())
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	if len(r.File) != 1 || r.File[0].Name != "pages/007.jpg" || r.File[0].Method != zip.Deflate {
		t.Fatalf("unexpected entry %+v", r.File[0].FileHeader)
	}
	rc, err := r.File[0].Open()
	if err != nil {
		t.Fatalf("Open entry: %v", err)
	}
	defer rc.Close()
	buf := make([]byte, r.File[0].UncompressedSize64)
	if _, err := io.ReadFull(rc, buf); err != nil {
		t.Fatalf("read entry: %v", err)
	}
	img, mime, err := imageio.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mime != "image/jpeg" || img.Bounds() != image.Rect(0, 0, 16, 8) {
		t.Fatalf("unexpected entry image %s %v", mime, img.Bounds())
	}
}

func TestWriterLockedByOtherWriter(t *testing.T) {
	dir := t.TempDir()
	first, err := Create(dir, "same")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer first.Abort()

	if _, err := Create(dir, "same"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestWriterAbort(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, "aborted")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.AddJPEG(1, []byte("not really a jpeg")); err != nil {
		t.Fatalf("AddJPEG: %v", err)
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files after abort, found %d", len(entries))
	}
}

func TestWriterRejectsZeroIndex(t *testing.T) {
	w, err := Create(t.TempDir(), "x")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer w.Abort()
	if err := w.AddJPEG(0, nil); err == nil {
		t.Fatal("expected error for index 0")
	}
}
