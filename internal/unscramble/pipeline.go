package unscramble

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pagewright/internal/contentinfo"
	"pagewright/internal/keyselect"
	"pagewright/internal/logging"
	"pagewright/internal/services"
	"pagewright/internal/tile"
	"pagewright/internal/tiling"
)

// Page is one scrambled image to reconstruct.
type Page struct {
	// Index is the 1-based page number used for output naming.
	Index int
	// Ref is the image reference the key indices are derived from.
	Ref string
	// Image is the decoded scrambled image.
	Image image.Image
	// Width and Height are the original page size. Zero means the scrambled
	// image size.
	Width  int
	Height int
}

// Size returns the canvas size for the page.
func (p Page) Size() image.Point {
	b := p.Image.Bounds()
	size := image.Pt(p.Width, p.Height)
	if size.X <= 0 {
		size.X = b.Dx()
	}
	if size.Y <= 0 {
		size.Y = b.Dy()
	}
	return size
}

// PageResult is the outcome of one page.
type PageResult struct {
	Index     int
	Ref       string
	Selection keyselect.Selection
	Tiles     int
	Result    *tile.Result
	Err       error
	Duration  time.Duration
}

// OK reports whether the page produced a canvas.
func (r PageResult) OK() bool {
	return r.Err == nil && r.Result != nil
}

// Outcome classifies a failed page; successful pages return "".
func (r PageResult) Outcome() services.Outcome {
	if r.Err == nil {
		return ""
	}
	return services.FailureOutcome(r.Err)
}

// Options configures a Pipeline.
type Options struct {
	// ContentID tags log lines.
	ContentID string
	// Workers bounds how many pages are reconstructed at once.
	Workers int
	// Classify decides the scheme for a key pair. Nil means keyselect.Classify.
	Classify keyselect.Classifier
	Logger   *slog.Logger
}

// Pipeline reconstructs pages of one content with the key-derived scheme.
type Pipeline struct {
	tables    contentinfo.Tables
	contentID string
	workers   int
	classify  keyselect.Classifier
	logger    *slog.Logger
	runID     string
}

// New validates that tables carries usable ptbl and ctbl tables. A missing or
// short table is fatal for the whole content.
func New(tables contentinfo.Tables, opts Options) (*Pipeline, error) {
	if err := tables.Require("ptbl", "ctbl"); err != nil {
		return nil, services.Wrap(services.ErrValidation, "keys", "require tables", "content cannot be unscrambled", err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	classify := opts.Classify
	if classify == nil {
		classify = keyselect.Classify
	}
	runID := uuid.NewString()
	logger := logging.NewComponentLogger(opts.Logger, "unscramble")
	ctx := services.WithRunID(services.WithContentID(context.Background(), opts.ContentID), runID)
	return &Pipeline{
		tables:    tables,
		contentID: opts.ContentID,
		workers:   workers,
		classify:  classify,
		logger:    logging.WithContext(ctx, logger),
		runID:     runID,
	}, nil
}

// RunID identifies this pipeline's log lines.
func (p *Pipeline) RunID() string { return p.runID }

// Run reconstructs pages concurrently. Results are returned in input order.
// A failing page never stops the batch; pages not started before ctx is
// cancelled report the context error.
func (p *Pipeline) Run(ctx context.Context, pages []Page) []PageResult {
	results := make([]PageResult, len(pages))
	started := time.Now()
	p.logger.Info("unscramble started",
		logging.Event("run_start"),
		logging.Int("pages", len(pages)),
		logging.Int("workers", p.workers),
	)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(p.workers, max(len(pages), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.Process(ctx, pages[i])
			}
		}()
	}

	next := 0
feed:
	for ; next < len(pages); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(pages); i++ {
		results[i] = PageResult{Index: pages[i].Index, Ref: pages[i].Ref, Err: ctx.Err()}
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	p.logger.Info("unscramble finished",
		logging.Event("run_complete"),
		logging.Int("pages", len(pages)),
		logging.Int("failed", failed),
		logging.Duration("elapsed", time.Since(started)),
	)
	return results
}

// Process reconstructs a single page: select keys, classify, compute tiles and
// compose at the page's original size.
func (p *Pipeline) Process(ctx context.Context, page Page) PageResult {
	started := time.Now()
	res := PageResult{Index: page.Index, Ref: page.Ref}
	ctx = services.WithPage(ctx, page.Ref)
	logger := logging.WithContext(ctx, p.logger)

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if page.Image == nil {
		res.Err = services.Wrap(services.ErrNotFound, "load", page.Ref, "scrambled image missing", nil)
		p.logFailure(logger, res)
		return res
	}
	if err := tile.CheckSize(page.Size()); err != nil {
		res.Err = services.Wrap(services.ErrValidation, "load", page.Ref, "page size rejected", err)
		p.logFailure(logger, res)
		return res
	}

	sel, err := keyselect.SelectWith(page.Ref, p.tables["ptbl"], p.tables["ctbl"], p.classify)
	if err != nil {
		res.Err = services.Wrap(services.ErrValidation, "select", page.Ref, "key table cannot be indexed", err)
		p.logFailure(logger, res)
		return res
	}
	res.Selection = sel

	if _, err := keyselect.RequireSupported(sel); err != nil {
		res.Err = services.Wrap(services.ErrUnsupported, "classify", page.Ref, "scramble scheme not recognized", err)
		p.logFailure(logger, res)
		return res
	}
	alg, err := tiling.ForSelection(sel)
	if err != nil {
		res.Err = services.Wrap(services.ErrValidation, "tiles", page.Ref, fmt.Sprintf("%s keys rejected", sel.Kind), err)
		p.logFailure(logger, res)
		return res
	}

	bounds := page.Image.Bounds()
	directives := alg.Tiles(bounds.Dx(), bounds.Dy())
	res.Tiles = len(directives)
	res.Result = tile.Compose(page.Size(), directives, tile.Single(page.Image), logger)
	res.Duration = time.Since(started)

	logger.Debug("page reconstructed",
		logging.Event("page_complete"),
		logging.Scheme(sel.Kind),
		logging.Int("tiles", res.Tiles),
		logging.Int("applied", res.Result.Applied),
		logging.Int("skipped", len(res.Result.Failures)),
		logging.Duration("elapsed", res.Duration),
	)
	return res
}

func (p *Pipeline) logFailure(logger *slog.Logger, res PageResult) {
	logging.ErrorWithContext(logger, "page failed", "page_failed",
		logging.Int("index", res.Index),
		logging.String("outcome", string(res.Outcome())),
		logging.Error(res.Err),
	)
}
