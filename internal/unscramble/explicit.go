package unscramble

import (
	"context"
	"image"
	"log/slog"

	"github.com/google/uuid"

	"pagewright/internal/logging"
	"pagewright/internal/ptimg"
	"pagewright/internal/services"
	"pagewright/internal/tile"
)

// Descramble reconstructs every view of an explicit scramble map. Each view
// becomes one page result, numbered from 1 in map order.
func Descramble(ctx context.Context, m *ptimg.Map, images map[string]image.Image, logger *slog.Logger) ([]PageResult, error) {
	ctx = services.WithStage(services.WithRunID(ctx, uuid.NewString()), "ptimg")
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "ptimg"))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	views, err := ptimg.Descramble(m, images, logger)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "ptimg", "descramble", "scramble map cannot be applied", err)
	}
	out := make([]PageResult, len(views))
	skipped := 0
	for i, view := range views {
		out[i] = PageResult{Index: i + 1, Tiles: len(m.Views[i].Coords), Result: view}
		skipped += len(view.Failures)
	}
	logger.Info("scramble map applied",
		logging.Event("ptimg_complete"),
		logging.Int("views", len(views)),
		logging.Int("skipped_tiles", skipped),
	)
	return out, nil
}

// Canvases returns the canvases of successful results.
func Canvases(results []PageResult) []*tile.Result {
	out := make([]*tile.Result, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Result)
		}
	}
	return out
}
