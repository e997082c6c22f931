package ptimg

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"

	"pagewright/internal/tile"
)

// ErrInvalidMap reports a scramble map that fails structural checks.
var ErrInvalidMap = errors.New("invalid scramble map")

// Resource points a directive's resource id at a source image filename.
type Resource struct {
	Src string `json:"src"`
}

// View is one output image: its size and the directives that fill it.
type View struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Coords []string `json:"coords"`
}

// Map is a parsed ptimg document.
type Map struct {
	Resources map[string]Resource `json:"resources"`
	Views     []View              `json:"views"`
}

// ParseMap decodes and validates a scramble map document.
func ParseMap(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadMap reads and parses a scramble map file.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scramble map: %w", err)
	}
	return ParseMap(data)
}

// Validate checks view dimensions. Directive strings are checked per tile
// during descrambling.
func (m *Map) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil map", ErrInvalidMap)
	}
	for i, v := range m.Views {
		if v.Width < 0 || v.Height < 0 {
			return fmt.Errorf("%w: view %d has negative size %dx%d", ErrInvalidMap, i, v.Width, v.Height)
		}
		if err := tile.CheckSize(image.Pt(v.Width, v.Height)); err != nil {
			return fmt.Errorf("%w: view %d: %v", ErrInvalidMap, i, err)
		}
	}
	return nil
}

// Sources lists the distinct source filenames the map references.
func (m *Map) Sources() []string {
	seen := make(map[string]struct{}, len(m.Resources))
	var out []string
	for _, r := range m.Resources {
		if _, ok := seen[r.Src]; ok || r.Src == "" {
			continue
		}
		seen[r.Src] = struct{}{}
		out = append(out, r.Src)
	}
	return out
}
