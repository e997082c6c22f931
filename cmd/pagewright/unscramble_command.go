package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"pagewright/internal/keyselect"
	"pagewright/internal/logging"
	"pagewright/internal/services"
	"pagewright/internal/unscramble"
)

type pageSummary struct {
	Index   int              `json:"index"`
	Ref     string           `json:"ref,omitempty"`
	Scheme  keyselect.Kind   `json:"scheme"`
	Tiles   int              `json:"tiles"`
	Applied int              `json:"applied"`
	Skipped int              `json:"skipped"`
	Outcome services.Outcome `json:"outcome,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func summarize(results []unscramble.PageResult) []pageSummary {
	out := make([]pageSummary, len(results))
	for i, r := range results {
		s := pageSummary{Index: r.Index, Ref: r.Ref, Scheme: r.Selection.Kind, Tiles: r.Tiles, Outcome: r.Outcome()}
		if r.Result != nil {
			s.Applied = r.Result.Applied
			s.Skipped = len(r.Result.Failures)
		}
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		out[i] = s
	}
	return out
}

func newUnscrambleCommand(ctx *commandContext) *cobra.Command {
	var src tableSource
	var title string
	var workers int
	var noArchive bool

	cmd := &cobra.Command{
		Use:   "unscramble <manifest>",
		Short: "Reconstruct the pages listed in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manifestPath := args[0]
			m, err := unscramble.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			if src.contentID == "" {
				src.contentID = m.ContentID
			}
			loaded, err := ctx.loadTables(cmd.Context(), src)
			if err != nil {
				return err
			}
			if title == "" {
				title = m.Title
			}
			if title == "" {
				title = loaded.title
			}
			if workers <= 0 {
				workers = cfg.Workers.Count
			}

			logger := ctx.log()
			pipeline, err := unscramble.New(loaded.tables, unscramble.Options{
				ContentID: loaded.contentID,
				Workers:   workers,
				Classify:  ctx.classifier(),
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			pages, loadErrs := m.Load(filepath.Dir(manifestPath))
			for _, loadErr := range loadErrs {
				logging.WarnWithContext(logger, "page image unavailable", "page_load_failed",
					logging.Error(loadErr),
					logging.Impact("page is skipped"),
				)
			}

			results := pipeline.Run(cmd.Context(), pages)
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			pub, err := unscramble.Publish(cmd.Context(), results, unscramble.PublishOptions{
				Dir:     cfg.Paths.OutputDir,
				Title:   title,
				Quality: cfg.Output.JPEGQuality,
				Archive: cfg.Output.Archive && !noArchive,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			summaries := summarize(results)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, map[string]any{
					"run_id":      pipeline.RunID(),
					"content_id":  loaded.contentID,
					"publication": pub,
					"pages":       summaries,
				}); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					status := "ok"
					if s.Error != "" {
						status = string(s.Outcome) + ": " + s.Error
					} else if s.Skipped > 0 {
						status = fmt.Sprintf("ok (%d tiles skipped)", s.Skipped)
					}
					rows = append(rows, []string{strconv.Itoa(s.Index), s.Ref, s.Scheme.String(), strconv.Itoa(s.Tiles), status})
				}
				writeRows(cmd, []string{"Page", "Ref", "Scheme", "Tiles", "Status"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight})
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d pages to %s\n", len(pub.Entries), pub.Path)
			}

			if len(pub.Entries) == 0 && len(results) > 0 {
				return services.Wrap(services.ErrValidation, "unscramble", loaded.contentID, "no page could be reconstructed", nil)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&src.infoPath, "info", "i", "", "Content-info JSON document (default: cached tables)")
	cmd.Flags().StringVarP(&src.key, "key", "k", "", "Initial key the tables were issued for")
	cmd.Flags().StringVar(&src.contentID, "content-id", "", "Content id for cached tables (default: the manifest's)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Output title")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Pages reconstructed in parallel (default: workers.count)")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Write loose JPEG files instead of a zip archive")
	return cmd
}
