package unscramble

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pagewright/internal/archive"
	"pagewright/internal/imageio"
	"pagewright/internal/logging"
	"pagewright/internal/preflight"
	"pagewright/internal/services"
	"pagewright/internal/textutil"
)

// PublishOptions controls where reconstructed pages are written.
type PublishOptions struct {
	// Dir is the output root.
	Dir string
	// Title names the archive or page folder after sanitizing.
	Title string
	// Quality is the JPEG quality; out-of-range values use the default.
	Quality int
	// Archive packs pages into "<Dir>/<title>.zip" instead of loose files
	// under "<Dir>/<title>/".
	Archive bool
	Logger  *slog.Logger
}

// Publication summarizes written output.
type Publication struct {
	Path    string   `json:"path"`
	Archive bool     `json:"archive"`
	Entries []string `json:"entries"`
	Skipped []int    `json:"skipped,omitempty"`
}

// Publish writes successful pages in index order. Failed pages are listed in
// Skipped and leave a gap in numbering.
func Publish(ctx context.Context, results []PageResult, opts PublishOptions) (*Publication, error) {
	logger := logging.WithContext(services.WithStage(ctx, "publish"), logging.NewComponentLogger(opts.Logger, "publish"))
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "output", "output directory not set", nil)
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "output", "create output directory", err)
	}
	if err := preflight.CheckDirectory("output", opts.Dir); err != nil {
		return nil, err
	}

	var (
		pub *Publication
		err error
	)
	if opts.Archive {
		pub, err = publishArchive(ctx, results, opts)
	} else {
		pub, err = publishFiles(ctx, results, opts)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("pages published",
		logging.Event("publish_complete"),
		logging.String("path", pub.Path),
		logging.Bool("archive", pub.Archive),
		logging.Int("written", len(pub.Entries)),
		logging.Int("skipped", len(pub.Skipped)),
	)
	return pub, nil
}

func publishArchive(ctx context.Context, results []PageResult, opts PublishOptions) (*Publication, error) {
	w, err := archive.Create(opts.Dir, opts.Title)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "publish", "archive", "open archive", err)
	}
	pub := &Publication{Path: w.Path(), Archive: true}
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			_ = w.Abort()
			return nil, err
		}
		if !r.OK() {
			pub.Skipped = append(pub.Skipped, r.Index)
			continue
		}
		if err := w.AddImage(r.Index, r.Result.Canvas, opts.Quality); err != nil {
			_ = w.Abort()
			return nil, services.Wrap(services.ErrTransient, "publish", "archive", fmt.Sprintf("page %d", r.Index), err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "publish", "archive", "finish archive", err)
	}
	pub.Entries = w.Entries()
	return pub, nil
}

func publishFiles(ctx context.Context, results []PageResult, opts PublishOptions) (*Publication, error) {
	title := textutil.SanitizeTitle(opts.Title)
	dir := filepath.Join(opts.Dir, title)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "output", "create page directory", err)
	}
	pub := &Publication{Path: dir}
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.OK() {
			pub.Skipped = append(pub.Skipped, r.Index)
			continue
		}
		name := archive.EntryName(title, r.Index)
		if _, err := imageio.SaveJPEG(filepath.Join(opts.Dir, filepath.FromSlash(name)), r.Result.Canvas, opts.Quality); err != nil {
			return nil, services.Wrap(services.ErrTransient, "publish", "files", fmt.Sprintf("page %d", r.Index), err)
		}
		pub.Entries = append(pub.Entries, name)
	}
	return pub, nil
}
