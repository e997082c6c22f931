package archive

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"pagewright/internal/imageio"
	"pagewright/internal/textutil"
)

// compressionLevel matches the deflate level page archives are written with.
const compressionLevel = 6

// ErrLocked reports an archive another process is writing.
var ErrLocked = errors.New("archive is locked by another writer")

// EntryName returns the in-archive path of the page at 1-based index.
func EntryName(title string, index int) string {
	return fmt.Sprintf("%s/%03d.jpg", title, index)
}

// Writer builds "<dir>/<title>.zip" with one JPEG entry per page. Output goes
// to a partial file that is renamed into place by Close.
type Writer struct {
	title   string
	path    string
	partial string
	file    *os.File
	zw      *zip.Writer
	lock    *flock.Flock
	entries []string
	now     func() time.Time
}

// Create opens an archive for title under dir. The title is sanitized for use
// as both the archive name and the entry folder.
func Create(dir, title string) (*Writer, error) {
	safe := textutil.SanitizeTitle(title)
	path := filepath.Join(dir, safe+".zip")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock archive %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	partial := path + ".partial"
	file, err := os.Create(partial)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("create archive: %w", err)
	}
	zw := zip.NewWriter(file)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, compressionLevel)
	})
	return &Writer{
		title:   safe,
		path:    path,
		partial: partial,
		file:    file,
		zw:      zw,
		lock:    lock,
		now:     time.Now,
	}, nil
}

// Path is the final archive location.
func (w *Writer) Path() string { return w.path }

// Title is the sanitized title used for the archive name and entry folder.
func (w *Writer) Title() string { return w.title }

// Entries lists the entries written so far.
func (w *Writer) Entries() []string { return append([]string(nil), w.entries...) }

// AddJPEG writes already-encoded JPEG bytes as the page at 1-based index.
func (w *Writer) AddJPEG(index int, data []byte) error {
	if index < 1 {
		return fmt.Errorf("archive page index %d: must be 1 or greater", index)
	}
	name := EntryName(w.title, index)
	entry, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: w.now(),
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	w.entries = append(w.entries, name)
	return nil
}

// AddImage encodes img as JPEG and adds it as the page at index.
func (w *Writer) AddImage(index int, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := imageio.EncodeJPEG(&buf, img, quality); err != nil {
		return err
	}
	return w.AddJPEG(index, buf.Bytes())
}

// Close finishes the archive, moves it into place and releases the lock.
func (w *Writer) Close() error {
	defer w.unlock()
	if err := w.zw.Close(); err != nil {
		_ = w.file.Close()
		_ = os.Remove(w.partial)
		return fmt.Errorf("finish archive: %w", err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.partial)
		return fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(w.partial, w.path); err != nil {
		_ = os.Remove(w.partial)
		return fmt.Errorf("publish archive: %w", err)
	}
	return nil
}

// Abort discards the partial archive and releases the lock.
func (w *Writer) Abort() error {
	defer w.unlock()
	_ = w.file.Close()
	if err := os.Remove(w.partial); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove partial archive: %w", err)
	}
	return nil
}

// unlock releases the lock. The lock file stays on disk.
func (w *Writer) unlock() {
	_ = w.lock.Unlock()
}

// List returns the entry names of an existing archive.
func List(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}
