package unscramble

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"pagewright/internal/imageio"
	"pagewright/internal/keyselect"
	"pagewright/internal/tile"
)

// ErrInvalidManifest reports a page manifest that cannot be used.
var ErrInvalidManifest = errors.New("invalid page manifest")

// ManifestPage describes one scrambled page on disk.
type ManifestPage struct {
	// Src is the image reference the viewer requested; key indices derive
	// from its filename.
	Src string `json:"src"`
	// File is the local path, relative to the manifest. Empty means the
	// filename of Src.
	File   string `json:"file,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Manifest lists the pages of one content in reading order.
type Manifest struct {
	ContentID string         `json:"content_id,omitempty"`
	Title     string         `json:"title,omitempty"`
	Pages     []ManifestPage `json:"pages"`
}

// ParseManifest decodes and validates a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if len(m.Pages) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalidManifest)
	}
	for i, p := range m.Pages {
		if strings.TrimSpace(p.Src) == "" {
			return nil, fmt.Errorf("%w: page %d: src is empty", ErrInvalidManifest, i+1)
		}
		if p.Width < 0 || p.Height < 0 {
			return nil, fmt.Errorf("%w: page %d: negative size", ErrInvalidManifest, i+1)
		}
		if err := tile.CheckSize(image.Pt(p.Width, p.Height)); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrInvalidManifest, i+1, err)
		}
	}
	return &m, nil
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// Load decodes the manifest's images relative to dir. Pages are numbered
// from 1 in manifest order. A page whose image cannot be loaded is returned
// without an Image and fails during processing.
func (m *Manifest) Load(dir string) ([]Page, []error) {
	pages := make([]Page, len(m.Pages))
	var errs []error
	for i, mp := range m.Pages {
		file := mp.File
		if file == "" {
			file = keyselect.Filename(mp.Src)
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		pages[i] = Page{Index: i + 1, Ref: mp.Src, Width: mp.Width, Height: mp.Height}
		img, err := imageio.Load(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("page %d: %w", i+1, err))
			continue
		}
		pages[i].Image = img
	}
	return pages, errs
}
