package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"pagewright/internal/fileutil"
)

// DefaultJPEGQuality matches the quality reconstructed pages are written at.
const DefaultJPEGQuality = 95

// ErrUnsupportedFormat reports data that is not a decodable image format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

type decoder func(io.Reader) (image.Image, error)

var decoders = map[string]decoder{
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
	"image/gif":  gif.Decode,
	"image/bmp":  bmp.Decode,
	"image/webp": webp.Decode,
}

// Supported reports whether a MIME type can be decoded.
func Supported(mime string) bool {
	_, ok := decoders[mime]
	return ok
}

// Decode sniffs data and decodes it. The detected MIME type is returned with
// the image.
func Decode(data []byte) (image.Image, string, error) {
	mtype := mimetype.Detect(data)
	decode, ok := decoders[mtype.String()]
	if !ok {
		return nil, mtype.String(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
	}
	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, mtype.String(), fmt.Errorf("decode %s: %w", mtype.String(), err)
	}
	return img, mtype.String(), nil
}

// Load reads and decodes an image file.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// LoadDir decodes every image directly inside dir, keyed by filename. Files
// that are not images are skipped. A file that looks like an image but cannot
// be read or decoded is left out and its error collected, so the rest of the
// directory still loads. The map is nil only when dir itself is unreadable.
func LoadDir(dir string) (map[string]image.Image, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("read image directory: %w", err)}
	}
	images := make(map[string]image.Image)
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("detect %s: %w", entry.Name(), err))
			continue
		}
		if !Supported(mtype.String()) {
			continue
		}
		img, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		images[entry.Name()] = img
	}
	return images, errs
}

// Names returns the keys of images in sorted order.
func Names(images map[string]image.Image) []string {
	names := make([]string, 0, len(images))
	for name := range images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EncodeJPEG writes img as a baseline JPEG. Quality outside 1..100 falls back
// to DefaultJPEGQuality.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

// SaveJPEG encodes img to path atomically and returns the file's SHA256.
func SaveJPEG(path string, img image.Image, quality int) (string, error) {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return EncodeJPEG(w, img, quality)
	})
}
