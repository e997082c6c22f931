package ptimg

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"pagewright/internal/logging"
	"pagewright/internal/tile"
)

// ErrNoSources is returned when no source images are supplied.
var ErrNoSources = errors.New("no source images supplied")

// Descramble reconstructs every view of m from images, keyed by the resource
// src filename. Results are returned in view order. Malformed directives and
// unresolvable resources are recorded on the view's result and skipped.
func Descramble(m *Map, images map[string]image.Image, logger *slog.Logger) ([]*tile.Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoSources
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	resolve := m.resolver(images)
	results := make([]*tile.Result, 0, len(m.Views))
	for i, view := range m.Views {
		viewLogger := logger.With(logging.Int("view", i))
		results = append(results, descrambleView(view, resolve, viewLogger))
	}
	return results, nil
}

func descrambleView(view View, resolve tile.Resolver, logger *slog.Logger) *tile.Result {
	canvas := tile.NewCanvas(image.Pt(view.Width, view.Height), logger)
	for i, raw := range view.Coords {
		d, err := tile.ParseDirective(raw)
		if err != nil {
			canvas.Skip(i, raw, err)
			continue
		}
		_ = canvas.Apply(i, d, resolve)
	}
	return canvas.Result()
}

func (m *Map) resolver(images map[string]image.Image) tile.Resolver {
	return func(id string) (image.Image, error) {
		res, ok := m.Resources[id]
		if !ok {
			return nil, fmt.Errorf("%w: resource %q not declared", tile.ErrSourceNotFound, id)
		}
		img, ok := images[res.Src]
		if !ok || img == nil {
			return nil, fmt.Errorf("%w: resource %q src %q not loaded", tile.ErrSourceNotFound, id, res.Src)
		}
		return img, nil
	}
}
